package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apphttp "github.com/jsamuelsen/quote-keeper/internal/adapters/http"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/notify"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-keeper/internal/app"
	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// createGinContext creates a Gin context for handler testing.
func createGinContext(w http.ResponseWriter, r *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = r
	return c
}

// newQuoteService loads a collection of n quotes spread over ten categories.
func newQuoteService(b *testing.B, n int) *app.QuoteService {
	b.Helper()

	svc := app.NewQuoteService(app.QuoteServiceConfig{
		Store:  app.NewQuoteStore(memory.New(), discard),
		Logger: discard,
	})

	if err := svc.Load(context.Background()); err != nil {
		b.Fatal(err)
	}

	var doc strings.Builder
	doc.WriteString("[")

	for i := range n {
		if i > 0 {
			doc.WriteString(",")
		}

		fmt.Fprintf(&doc, `{"id":"bench-%d","text":"Quote number %d","category":"Category %d"}`, i, i, i%10)
	}

	doc.WriteString("]")

	if _, err := svc.Import(context.Background(), []byte(doc.String())); err != nil {
		b.Fatal(err)
	}

	return svc
}

// newRouter builds the full router around svc.
func newRouter(svc *app.QuoteService) *gin.Engine {
	engine := gin.New()

	apphttp.SetupRouter(engine, apphttp.RouterConfig{
		Logger:        discard,
		ServiceName:   "quote-keeper-bench",
		Timeout:       apphttp.DefaultRequestTimeout,
		Health:        setupHealthHandler(),
		Quotes:        handlers.NewQuoteHandler(svc),
		Notifications: handlers.NewNotificationHandler(notify.NewFeed(notify.DefaultCapacity, 0)),
	})

	return engine
}

// setupHealthHandler creates a HealthHandler with a minimal registry for benchmarking.
func setupHealthHandler() *handlers.HealthHandler {
	registry := ports.NewHealthRegistry()
	buildInfo := handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")
	return handlers.NewHealthHandler(registry, buildInfo)
}

// BenchmarkLivenessHandler measures the liveness endpoint, the hot path for probes.
func BenchmarkLivenessHandler(b *testing.B) {
	handler := setupHealthHandler()
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Liveness(c)
	}
}

// BenchmarkReadinessHandler_WithChecks measures readiness with a critical
// storage check and an optional remote check.
func BenchmarkReadinessHandler_WithChecks(b *testing.B) {
	registry := ports.NewHealthRegistry()
	_ = registry.Register(memory.New())
	_ = registry.RegisterOptional(&simpleHealthChecker{name: "quote-service"})

	handler := handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z"))
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		c := createGinContext(w, req)
		handler.Readiness(c)
	}
}

// BenchmarkListQuotes measures a filtered, paginated list through the full
// middleware chain at several collection sizes.
func BenchmarkListQuotes(b *testing.B) {
	for _, n := range []int{10, 1000, 10000} {
		b.Run(fmt.Sprintf("quotes=%d", n), func(b *testing.B) {
			router := newRouter(newQuoteService(b, n))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes?category=Category+3&limit=50", http.NoBody)

			b.ReportAllocs()

			for b.Loop() {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
			}
		})
	}
}

// BenchmarkRandomQuote measures the random pick through the full chain.
func BenchmarkRandomQuote(b *testing.B) {
	router := newRouter(newQuoteService(b, 1000))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/random", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkMerge measures reconciling a remote page into a large collection.
func BenchmarkMerge(b *testing.B) {
	local := make([]domain.Quote, 10000)
	for i := range local {
		local[i] = domain.Quote{ID: fmt.Sprintf("local-%d", i), Text: "t", Category: "c"}
	}

	remote := make([]domain.Quote, 10)
	for i := range remote {
		remote[i] = domain.Quote{ID: fmt.Sprintf("%s%d", domain.RemoteIDPrefix, i), Text: "r", Category: "Server"}
	}

	b.ReportAllocs()

	for b.Loop() {
		_ = domain.Merge(local, remote)
	}
}

// BenchmarkMiddlewareChain_Full measures the middleware overhead on a 404.
func BenchmarkMiddlewareChain_Full(b *testing.B) {
	router := newRouter(newQuoteService(b, 10))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/missing", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// simpleHealthChecker is a minimal health checker for benchmarking.
type simpleHealthChecker struct {
	name string
}

func (s *simpleHealthChecker) Name() string {
	return s.name
}

func (s *simpleHealthChecker) Check(_ context.Context) error {
	return nil
}
