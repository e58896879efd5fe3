package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/san-kum/physview/internal/config"
	"github.com/san-kum/physview/internal/formula"
)

// Open picks the backing store from server config: Postgres when a database
// URL is set, a YAML file when formulas_file is set, the built-in catalog
// otherwise. The returned close func is never nil.
func Open(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch {
	case cfg.DatabaseURL != "":
		st, err := OpenSQL(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, noop, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, noop, err
		}
		if _, err := st.Seed(ctx, formula.Builtin()); err != nil {
			st.Close()
			return nil, noop, err
		}
		logger.Info("using postgres formula store")
		return st, st.Close, nil
	case cfg.FormulasFile != "":
		logger.Info("using file formula store", zap.String("path", cfg.FormulasFile))
		return NewFile(cfg.FormulasFile), noop, nil
	default:
		logger.Info("using built-in formula catalog", zap.Int("count", len(formula.Catalog)))
		return NewMemory(formula.Builtin()), noop, nil
	}
}
