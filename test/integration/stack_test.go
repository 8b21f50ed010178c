//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	apphttp "github.com/jsamuelsen/quote-keeper/internal/adapters/http"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-keeper/internal/bootstrap"
	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
)

// fakeRemote plays the remote posts list. GET serves the configured posts,
// POST records a push. While down every request gets a 503.
type fakeRemote struct {
	*httptest.Server

	mu     sync.Mutex
	posts  []map[string]any
	down   atomic.Bool
	pushes atomic.Int32
}

func newFakeRemote() *fakeRemote {
	r := &fakeRemote{}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))

	return r
}

func (r *fakeRemote) serve(w http.ResponseWriter, req *http.Request) {
	if r.down.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if req.Method == http.MethodPost {
		_, _ = io.Copy(io.Discard, req.Body)
		r.pushes.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))

		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_ = json.NewEncoder(w).Encode(r.posts)
}

// setPosts serves n posts with ids 1..n.
func (r *fakeRemote) setPosts(n int) {
	posts := make([]map[string]any, n)
	for i := range n {
		posts[i] = map[string]any{
			"id":     i + 1,
			"userId": 1,
			"title":  fmt.Sprintf("Remote quote %d", i+1),
			"body":   "body",
		}
	}

	r.mu.Lock()
	r.posts = posts
	r.mu.Unlock()
}

// stack is the whole service running in-process against a fake remote.
type stack struct {
	app    *bootstrap.App
	remote *fakeRemote
	server *httptest.Server
}

// startStack boots the service with an in-memory store unless overrides
// say otherwise.
func startStack(ctx context.Context, overrides map[string]any) (*stack, error) {
	remote := newFakeRemote()

	settings := map[string]any{
		"log.level":                     "error",
		"storage.driver":                bootstrap.DriverMemory,
		"services.quote.base_url":       remote.URL,
		"client.timeout":                "2s",
		"client.retry.max_attempts":     1,
		"client.retry.initial_interval": "10ms",
		"client.retry.max_interval":     "100ms",
		"sync.push_enabled":             true,
	}
	for k, v := range overrides {
		settings[k] = v
	}

	cfg, err := config.LoadWithOverrides("test", settings)
	if err != nil {
		remote.Close()
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		remote.Close()
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()

	a, err := bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger, Registerer: registry})
	if err != nil {
		remote.Close()
		return nil, err
	}

	srv := apphttp.New(&cfg.Server, logger)
	apphttp.SetupRouter(srv.Engine(), apphttp.RouterConfig{
		Logger:      logger,
		ServiceName: "quote-keeper-integration",
		Timeout:     apphttp.DefaultRequestTimeout,
		Health: handlers.NewHealthHandler(a.Health, handlers.NewBuildInfo("test", "none", "now"),
			handlers.WithSyncReporter(a.Sync), handlers.WithGatherer(registry)),
		Quotes:        handlers.NewQuoteHandler(a.Quotes),
		Sync:          handlers.NewSyncHandler(a.Sync),
		Notifications: handlers.NewNotificationHandler(a.Feed),
	})

	return &stack{app: a, remote: remote, server: httptest.NewServer(srv.Engine())}, nil
}

func (s *stack) URL() string {
	return s.server.URL
}

// Close stops serving, then drains and closes the application.
func (s *stack) Close() error {
	s.server.Close()
	err := s.app.Close(context.Background())
	s.remote.Close()

	return err
}
