package main

import (
	"fmt"

	"github.com/aretw0/complog/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the session registry behind a JSON API over HTTP, with SSE and
WebSocket event streams, Prometheus metrics on /metrics and the configured archive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger)
		if err != nil {
			return fmt.Errorf("error initializing complog: %w", err)
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warn("Failed to close archive backend", "err", err)
			}
		}()

		if err := app.Serve(sigCtx); err != nil {
			return err
		}
		logger.Info("complog server stopped gracefully", "signal", sigCtx.Signal())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides server.addr)")
}
