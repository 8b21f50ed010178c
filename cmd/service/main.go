// Package main is the entry point for the quote keeper HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-keeper/internal/bootstrap"
	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := bootstrap.NewLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Assemble storage, remote client, services and telemetry
	a, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:     logger,
		Registerer: prometheus.DefaultRegisterer,
		Telemetry:  true,
	})
	if err != nil {
		return err
	}

	// 5. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(a.Health, buildInfo, handlers.WithSyncReporter(a.Sync))

	// 6. Create HTTP server and router
	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   cfg.Telemetry.ServiceName,
		Timeout:       http.DefaultRequestTimeout,
		Health:        healthHandler,
		Quotes:        handlers.NewQuoteHandler(a.Quotes),
		Sync:          handlers.NewSyncHandler(a.Sync),
		Notifications: handlers.NewNotificationHandler(a.Feed),
	})

	// 7. Bind before syncing so a taken port fails fast
	if err := server.Listen(ctx); err != nil {
		return errors.Join(err, a.Close(context.WithoutCancel(ctx)))
	}

	// 8. Serve and sync until a signal arrives or one of them fails
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return server.Run(gctx) })

	if cfg.Sync.Enabled {
		g.Go(func() error { return a.Sync.Run(gctx) })
	} else {
		logger.Info("periodic sync disabled")
	}

	runErr := g.Wait()

	// 9. Drain pushes and sync cycles, close storage, flush telemetry
	if err := a.Close(context.WithoutCancel(ctx)); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")

	return runErr
}
