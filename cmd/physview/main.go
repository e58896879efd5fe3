package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/physview/internal/config"
	"github.com/san-kum/physview/internal/telemetry"
)

var (
	configFile string
	profile    string
	apiURL     string
	verbose    bool

	// resolved in PersistentPreRunE
	cfg           *config.Config
	logger        *zap.Logger
	traceShutdown telemetry.ShutdownFunc

	rawLatex   bool
	once       bool
	exportFmt  string
	exportOut  string
	builtin    bool
	inputs     []string
	vary       string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
)

// main registers the physview commands and runs the formula viewer when no
// subcommand is given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:               "physview",
		Short:             "physics formula viewer",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runView,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "deployment profile ("+strings.Join(config.ListProfiles(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "formulas API base URL (overrides "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().BoolVar(&once, "once", false, "print the formulas once instead of starting the viewer")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "show the formula list in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runView,
	}
	viewCmd.Flags().BoolVar(&once, "once", false, "print the formulas once instead of starting the viewer")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list formulas from the API as a table",
		Args:  cobra.NoArgs,
		RunE:  listFormulas,
	}
	listCmd.Flags().BoolVar(&rawLatex, "raw", false, "print LaTeX source instead of rendered math")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export formulas as json, csv or yaml",
		Args:  cobra.NoArgs,
		RunE:  exportFormulas,
	}
	exportCmd.Flags().StringVar(&exportFmt, "format", "json", "output format (json, csv, yaml)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file; format taken from its extension")
	exportCmd.Flags().BoolVar(&builtin, "builtin", false, "export the built-in catalog without calling the API")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the formulas API and HTML page",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}

	unitsCmd := &cobra.Command{
		Use:   "units [category]",
		Short: "list unit categories, or the units in one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listUnits,
	}

	formulasCmd := &cobra.Command{
		Use:   "formulas",
		Short: "list the calculators and their inputs",
		Args:  cobra.NoArgs,
		RunE:  listCalculators,
	}

	calcCmd := &cobra.Command{
		Use:     "calc [formula]",
		Short:   "evaluate a formula",
		Example: "  physview calc momentum --in mass=2kg --in \"velocity=36 km/h\"",
		Args:    cobra.ExactArgs(1),
		RunE:    runCalc,
	}
	calcCmd.Flags().StringArrayVar(&inputs, "in", nil, "input as name=<value><unit> (repeatable)")

	plotCmd := &cobra.Command{
		Use:     "plot [formula]",
		Short:   "plot a formula while varying one input",
		Example: "  physview plot kinetic_energy --in mass=2kg --vary velocity --from 0 --to 10",
		Args:    cobra.ExactArgs(1),
		RunE:    runPlot,
	}
	plotCmd.Flags().StringArrayVar(&inputs, "in", nil, "fixed input as name=<value><unit> (repeatable)")
	plotCmd.Flags().StringVar(&vary, "vary", "", "input to sweep, in its base unit")
	plotCmd.Flags().Float64Var(&sweepFrom, "from", 0, "sweep start")
	plotCmd.Flags().Float64Var(&sweepTo, "to", 10, "sweep end")
	plotCmd.Flags().IntVar(&sweepSteps, "points", 80, "number of samples")
	plotCmd.MarkFlagRequired("vary")

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "list deployment profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printHeader(os.Stdout, "profiles:")
			for _, name := range config.ListProfiles() {
				p := config.GetProfile(name)
				fmt.Printf("  %-8s %s\n", name, p.API.BaseURL)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "show or write configuration",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "print the effective configuration",
			Args:  cobra.NoArgs,
			RunE:  showConfig,
		},
		&cobra.Command{
			Use:   "init [path]",
			Short: "write the default configuration to path",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.Save(args[0], config.DefaultConfig()); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", args[0])
				return nil
			},
		},
	)

	rootCmd.AddCommand(viewCmd, listCmd, exportCmd, serveCmd, unitsCmd, formulasCmd, calcCmd, plotCmd, profilesCmd, configCmd)

	err := rootCmd.Execute()
	teardown()
	if err != nil {
		os.Exit(1)
	}
}

// setup resolves configuration (defaults, profile, file, env, flags), then
// builds the logger and tracer for the command about to run.
func setup(cmd *cobra.Command, args []string) error {
	c, err := resolveConfig()
	if err != nil {
		return err
	}
	cfg = c

	// The viewer owns the terminal; only log when a file is configured.
	interactive := (cmd.Name() == "view" || cmd.Name() == "physview") && !once
	logger, err = newLogger(cfg.Log, interactive)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	traceShutdown, err = telemetry.Setup(cmd.Context(), cfg.Trace.Endpoint, cfg.Trace.ServiceName)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	return nil
}

// teardown flushes traces and logs; it runs even when the command failed.
func teardown() {
	if traceShutdown != nil {
		if err := traceShutdown(context.Background()); err != nil && logger != nil {
			logger.Warn("flushing traces", zap.Error(err))
		}
	}
	if logger != nil {
		logger.Sync()
	}
}

func resolveConfig() (*config.Config, error) {
	c := config.DefaultConfig()
	if profile != "" {
		c = config.GetProfile(profile)
		if c == nil {
			return nil, fmt.Errorf("unknown profile: %s (available: %v)", profile, config.ListProfiles())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, c); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	c.ApplyEnv(os.Getenv)
	if apiURL != "" {
		c.SetBaseURL(apiURL)
	}
	if verbose {
		c.Log.Level = "debug"
	}
	return c, nil
}

func newLogger(lc config.LogConfig, interactive bool) (*zap.Logger, error) {
	if interactive && lc.File == "" {
		return zap.NewNop(), nil
	}

	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.OutputPaths = []string{"stderr"}
	if lc.File != "" {
		zc.OutputPaths = []string{lc.File}
	}
	return zc.Build()
}
