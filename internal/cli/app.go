package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/complog/internal/config"
	httpAdapter "github.com/aretw0/complog/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/complog/pkg/adapters/mcp"
	"github.com/aretw0/complog/pkg/adapters/process"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/observability"
	"github.com/aretw0/complog/pkg/registry"
	"golang.org/x/sync/errgroup"
)

// App is a fully wired complog process: registry, observers and archive.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *registry.Registry
	Archive  *archive.Manager
	Streams  *httpAdapter.StreamManager
	Metrics  *observability.Metrics
	Runner   *process.Runner

	closeArchive func() error
}

// NewApp wires the components selected by cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	policy, err := registry.ParseDuplicatePolicy(cfg.Registry.OnDuplicate)
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner(cfg.Exec, logger)
	if err != nil {
		return nil, err
	}

	mgr, closeArchive, err := OpenArchive(ctx, cfg.Archive, logger)
	if err != nil {
		return nil, err
	}

	streams := httpAdapter.NewStreamManager(cfg.Server.StreamBuffer, logger)
	metrics := observability.NewMetrics()
	reg := registry.New(
		registry.WithDuplicatePolicy(policy),
		registry.WithLogger(logger),
		registry.WithObserver(streams.Observe),
		registry.WithObserver(metrics.Observe),
	)
	metrics.TrackSessions(reg.Len)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Registry:     reg,
		Archive:      mgr,
		Streams:      streams,
		Metrics:      metrics,
		Runner:       runner,
		closeArchive: closeArchive,
	}, nil
}

// Handler returns the HTTP API of the app.
func (a *App) Handler() http.Handler {
	return httpAdapter.NewHandler(a.Registry,
		httpAdapter.WithArchive(a.Archive),
		httpAdapter.WithStreams(a.Streams),
		httpAdapter.WithMetrics(a.Metrics),
		httpAdapter.WithInputLimit(a.Config.Server.MaxInputSize),
		httpAdapter.WithLogger(a.Logger),
	)
}

// MCPServer returns the MCP tool server of the app.
func (a *App) MCPServer() *mcpAdapter.Server {
	return mcpAdapter.NewServer(a.Registry,
		mcpAdapter.WithArchive(a.Archive),
		mcpAdapter.WithMetrics(a.Metrics),
		mcpAdapter.WithInputLimit(a.Config.Server.MaxInputSize),
		mcpAdapter.WithRunner(a.Runner),
		mcpAdapter.WithLogger(a.Logger),
	)
}

// Serve listens on the configured address until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Config.Server.Addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener serves the HTTP API on ln and shuts down gracefully when ctx is
// cancelled. Streaming requests observe the cancellation through their context.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("HTTP server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Config.Server.ShutdownTimeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		a.Logger.Info("Shutting down HTTP server", "timeout", timeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("Graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		return nil
	})
	return g.Wait()
}

// Close releases the archive backend.
func (a *App) Close() error {
	return a.closeArchive()
}
