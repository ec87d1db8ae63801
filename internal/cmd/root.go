// Package cmd implements the planforge command-line interface.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planforge/internal/config"
	"github.com/felixgeelhaar/planforge/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "planforge",
	Short: "Turn free-text tasks into phased implementation plans",
	Long: `planforge analyzes a free-text development task and produces a phased
implementation plan: ordered phases with file manifests, dependencies, and
time estimates. When a model API credential is available, phases are
enriched in the background with architecture and implementation guidance;
without one, the rule-based plan is returned as-is.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	cfgPath   string
	logLevel  string
	logFormat string

	// cfg is populated by setup before any subcommand runs.
	cfg config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a planforge.yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or text")
}

// setup loads configuration and installs the process-wide logger. Flags win
// over the config file.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.Log.Level)
	logCfg.Format = log.ParseFormat(cfg.Log.Format)
	log.SetDefaultLogger(log.New(logCfg))

	return nil
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
