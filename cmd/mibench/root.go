package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ahrav/mibench/internal/config"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "mibench",
		Short:        "Reproducible benchmark tasks for mutual-information estimators",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		newGenerateCmd(a),
		newInspectCmd(a),
		newRunCmd(a),
		newWorkerCmd(a),
		newBenchmarkCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Observability.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Observability.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.Observability)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
