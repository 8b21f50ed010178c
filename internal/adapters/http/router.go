package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-keeper/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /api/v1 requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains the handlers and settings of the router.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	// Timeout bounds /api/v1 requests. Zero disables it.
	Timeout time.Duration

	Health        *handlers.HealthHandler
	Quotes        *handlers.QuoteHandler
	Sync          *handlers.SyncHandler
	Notifications *handlers.NotificationHandler
}

// SetupRouter installs the middleware chain and routes on engine.
// Middleware order, first to last: recovery, request id, correlation id,
// tracing, HTTP metrics, request logging. Probes live under /-/ without a
// timeout; the quote API lives under /api/v1.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.Middleware(),
		middleware.Logging(cfg.Logger),
	)

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutes(engine.Group("/-"))
	}

	api := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterRoutes(api)
	}

	if cfg.Sync != nil {
		cfg.Sync.RegisterRoutes(api)
	}

	if cfg.Notifications != nil {
		cfg.Notifications.RegisterRoutes(api)
	}
}
