package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/san-kum/physview/internal/formula"
)

// MaxNameLen matches formula_name VARCHAR(100).
const MaxNameLen = 100

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS formula (
	id SERIAL PRIMARY KEY,
	formula_name VARCHAR(100) NOT NULL,
	latex TEXT NOT NULL
)`
	listSQL   = `SELECT id, formula_name, latex FROM formula ORDER BY id`
	countSQL  = `SELECT COUNT(*) FROM formula`
	insertSQL = `INSERT INTO formula (formula_name, latex) VALUES ($1, $2)`
)

// SQLStore reads the formula table from Postgres.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQL opens a Postgres connection pool. The connection is verified lazily.
func OpenSQL(databaseURL string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return NewSQL(db, logger), nil
}

func NewSQL(db *sql.DB, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the formula table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("creating formula table: %w", err)
	}
	return nil
}

// Seed inserts formulas when the table is empty and reports how many were written.
func (s *SQLStore) Seed(ctx context.Context, formulas []formula.Formula) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting formulas: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, f := range formulas {
		if err := Validate(f); err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, insertSQL, f.Name, f.Latex); err != nil {
			return 0, fmt.Errorf("inserting %q: %w", f.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.logger.Info("seeded formula table", zap.Int("count", len(formulas)))
	return len(formulas), nil
}

func (s *SQLStore) List(ctx context.Context) ([]formula.Formula, error) {
	rows, err := s.db.QueryContext(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("querying formulas: %w", err)
	}
	defer rows.Close()

	formulas := []formula.Formula{}
	for rows.Next() {
		var f formula.Formula
		if err := rows.Scan(&f.ID, &f.Name, &f.Latex); err != nil {
			return nil, fmt.Errorf("scanning formula: %w", err)
		}
		formulas = append(formulas, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return formulas, nil
}
