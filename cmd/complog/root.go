package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/complog/internal/config"
	"github.com/aretw0/complog/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "complog",
	Short: "complog is a hierarchical event logger for test runs",
	Long: `complog records sessions as trees of Tests, Steps and Log lines.
Operations are routed to the innermost open unit, and every change is queued
for pollers and streamed to live subscribers.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file (default $"+config.EnvPath+")")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
}

// loadConfig reads the config selected by the persistent flags and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	// Stdout belongs to command output (and to JSON-RPC in MCP stdio mode).
	logger := logging.NewWithFormat(os.Stderr, level, cfg.Log.Format)
	return cfg, logger, nil
}
