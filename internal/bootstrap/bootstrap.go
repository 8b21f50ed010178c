// Package bootstrap assembles the quote keeper from configuration. Both the
// HTTP service and the CLI build their object graph here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/clients"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/notify"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-keeper/internal/app"
	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
	"github.com/jsamuelsen/quote-keeper/internal/platform/metrics"
	"github.com/jsamuelsen/quote-keeper/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// kvStore is a key-value store the application owns and closes.
type kvStore interface {
	ports.KeyValueStore
	ports.HealthChecker
	io.Closer
}

// Options customize the graph for the caller's surface.
type Options struct {
	// Logger defaults to one built from the log config.
	Logger *slog.Logger

	// Renderer draws collection changes. Defaults to ports.NopRenderer.
	Renderer ports.Renderer

	// Notifier also receives every notification, next to the feed.
	Notifier ports.Notifier

	// Registerer receives the sync metrics. Nil skips metrics.
	Registerer prometheus.Registerer

	// Telemetry starts the OpenTelemetry exporters when enabled in config.
	Telemetry bool

	// Remote replaces the HTTP remote, for tests.
	Remote ports.RemoteQuoteSource

	// Store replaces the configured storage, for tests.
	Store ports.KeyValueStore
}

// App is the assembled quote keeper.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Quotes *app.QuoteService
	Sync   *app.SyncService
	Pusher *app.Pusher
	Feed   *notify.Feed
	Health *ports.DefaultHealthRegistry

	telemetry *telemetry.Provider
	store     ports.KeyValueStore
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

// New builds the graph and loads the collection. Load problems such as a
// corrupt stored value are reported as notifications, not returned; only
// setup failures are errors. Call Close when done.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(cfg)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Feed:   notify.NewFeed(notify.DefaultCapacity, 0),
		Health: ports.NewHealthRegistry(),
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close(context.WithoutCancel(ctx)))
		}
	}()

	if opts.Telemetry {
		if a.telemetry, err = startTelemetry(ctx, cfg); err != nil {
			return nil, err
		}
	}

	if a.store, err = openStore(ctx, cfg.Storage, opts.Store, logger); err != nil {
		return nil, err
	}

	if checker, ok := a.store.(ports.HealthChecker); ok {
		if err = a.Health.Register(checker); err != nil {
			return nil, fmt.Errorf("registering storage health check: %w", err)
		}
	}

	remote := opts.Remote
	if remote == nil {
		quoteClient, clientErr := newQuoteClient(cfg, logger)
		if clientErr != nil {
			return nil, clientErr
		}

		if err = a.Health.RegisterOptional(quoteClient); err != nil {
			return nil, fmt.Errorf("registering remote health check: %w", err)
		}

		remote = quoteClient
	}

	var notifier ports.Notifier = a.Feed
	if opts.Notifier != nil {
		notifier = notify.Fanout{a.Feed, opts.Notifier}
	}

	var observer ports.SyncObserver
	if opts.Registerer != nil {
		m, metricsErr := metrics.NewSyncMetrics(opts.Registerer)
		if metricsErr != nil {
			return nil, fmt.Errorf("registering sync metrics: %w", metricsErr)
		}

		observer = m
	}

	var publisher ports.QuotePublisher
	if cfg.Sync.PushEnabled {
		a.Pusher = app.NewPusher(remote, notifier, logger, cfg.Sync.PushTimeout)
		publisher = a.Pusher
	}

	a.Quotes = app.NewQuoteService(app.QuoteServiceConfig{
		Store:     app.NewQuoteStore(a.store, logger),
		Publisher: publisher,
		Notifier:  notifier,
		Renderer:  opts.Renderer,
		Observer:  observer,
		Logger:    logger,
	})

	a.Sync = app.NewSyncService(app.SyncServiceConfig{
		Quotes:       a.Quotes,
		Remote:       remote,
		Observer:     observer,
		Logger:       logger,
		Interval:     cfg.Sync.Interval,
		PageSize:     cfg.Sync.PageSize,
		RunOnStartup: cfg.Sync.RunOnStartup,
	})

	if loadErr := a.Quotes.Load(ctx); loadErr != nil {
		logger.WarnContext(ctx, "collection loaded with problems", slog.Any("error", loadErr))
	}

	return a, nil
}

// Close drains in-flight pushes and sync cycles, then closes storage and
// flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	if a.Pusher != nil {
		a.Pusher.Wait()
	}

	if a.Sync != nil {
		a.Sync.Wait()
	}

	var errs []error

	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}

	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

func startTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Provider, error) {
	p, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      cfg.Telemetry.Endpoint,
		Insecure:      cfg.Telemetry.Insecure,
		ServiceName:   cfg.Telemetry.ServiceName,
		Version:       cfg.App.Version,
		Environment:   cfg.App.Environment,
		SamplingRate:  cfg.Telemetry.SamplingRate,
		StorageDriver: cfg.Storage.Driver,
		Binary:        filepath.Base(os.Args[0]),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	return p, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, override ports.KeyValueStore, logger *slog.Logger) (ports.KeyValueStore, error) {
	if override != nil {
		return override, nil
	}

	var store kvStore

	switch cfg.Driver {
	case DriverMemory:
		var opts []memory.Option
		if cfg.QuotaBytes > 0 {
			opts = append(opts, memory.WithQuota(cfg.QuotaBytes))
		}

		store = memory.New(opts...)
	case DriverSQLite, "":
		db, err := sqlite.Open(ctx, cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening storage: %w", err)
		}

		store = db
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	logger.DebugContext(ctx, "storage opened",
		slog.String("driver", cfg.Driver),
		slog.String("path", cfg.Path))

	return store, nil
}

func newQuoteClient(cfg *config.Config, logger *slog.Logger) (*acl.QuoteClient, error) {
	svc := cfg.Services.Quote

	if _, err := url.ParseRequestURI(svc.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid remote url %q: %w", svc.BaseURL, err)
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     svc.BaseURL,
		ServiceName: svc.Name,
		UserAgent:   cfg.Client.UserAgent,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		RateLimit:   cfg.Client.RateLimit,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating remote client: %w", err)
	}

	return acl.NewQuoteClient(acl.QuoteClientConfig{
		Client: client,
		Path:   svc.Path,
		Logger: logger,
	}), nil
}
