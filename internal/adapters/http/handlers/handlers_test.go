package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/notify"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-keeper/internal/app"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	quotes *app.QuoteService
	sync   *app.SyncService
	feed   *notify.Feed
}

// newFixture wires the API over an in-memory store seeded with the
// defaults. remote may be nil when the test does not sync.
func newFixture(t *testing.T, remote ports.RemoteQuoteSource) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := notify.NewFeed(notify.DefaultCapacity, 0)

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Store:    app.NewQuoteStore(memory.New(), logger),
		Notifier: feed,
		Logger:   logger,
		Intn:     func(int) int { return 0 },
	})
	require.NoError(t, quotes.Load(context.Background()))

	f := &fixture{router: gin.New(), quotes: quotes, feed: feed}

	api := f.router.Group("/api/v1")
	NewQuoteHandler(quotes).RegisterRoutes(api)
	NewNotificationHandler(feed).RegisterRoutes(api)

	if remote != nil {
		f.sync = app.NewSyncService(app.SyncServiceConfig{Quotes: quotes, Remote: remote, Logger: logger})
		NewSyncHandler(f.sync).RegisterRoutes(api)
	}

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

