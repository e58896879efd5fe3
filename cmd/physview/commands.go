package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physview/internal/apiclient"
	"github.com/san-kum/physview/internal/formula"
	"github.com/san-kum/physview/internal/mathrender"
	"github.com/san-kum/physview/internal/server"
	"github.com/san-kum/physview/internal/store"
	"github.com/san-kum/physview/internal/view"
)

const shutdownTimeout = 5 * time.Second

func runView(cmd *cobra.Command, args []string) error {
	v := view.NewFromConfig(cmd.Context(), view.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Theme:   cfg.View.Theme,
	}, logger)

	if !once {
		return view.Run(cmd.Context(), v)
	}

	defer v.Close()
	switch s := v.Load().(type) {
	case view.Loaded:
		r := mathrender.NewUnicode()
		printHeader(os.Stdout, "%s", view.Title)
		for _, f := range s.Formulas {
			fmt.Printf("  • %s: %s\n", f.Name, r.Render(mathrender.Inline(f.Latex)))
		}
	case view.Errored:
		return errors.New(s.Message)
	}
	return nil
}

func newClient() *apiclient.Client {
	return apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, apiclient.WithLogger(logger))
}

func listFormulas(cmd *cobra.Command, args []string) error {
	formulas, err := newClient().Fetch(cmd.Context())
	if err != nil {
		return err
	}
	if len(formulas) == 0 {
		fmt.Println("no formulas")
		return nil
	}

	r := mathrender.NewUnicode()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFORMULA")
	for _, f := range formulas {
		latex := f.Latex
		if !rawLatex {
			latex = r.Render(mathrender.Inline(latex))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", f.ID, f.Name, latex)
	}
	return w.Flush()
}

func exportFormulas(cmd *cobra.Command, args []string) error {
	var formulas []formula.Formula
	if builtin {
		formulas = formula.Builtin()
	} else {
		var err error
		formulas, err = newClient().Fetch(cmd.Context())
		if err != nil {
			return err
		}
	}

	if exportOut != "" {
		if err := store.ExportFile(exportOut, formulas); err != nil {
			return err
		}
		logger.Info("exported formulas", zap.String("path", exportOut), zap.Int("count", len(formulas)))
		fmt.Printf("exported %d formulas to %s\n", len(formulas), exportOut)
		return nil
	}
	return store.ExportTo(os.Stdout, exportFmt, formulas)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := store.Open(ctx, cfg.Server, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer closeStore()

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, st, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
		return err
	}
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
