package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
)

const (
	// HeaderCorrelationID ties together the requests of one client action,
	// for example an import followed by the sync it triggers upstream.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key of the correlation id.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID propagates X-Correlation-ID the same way RequestID handles
// its header.
func CorrelationID() gin.HandlerFunc {
	return idMiddleware(HeaderCorrelationID, ContextKeyCorrelationID,
		ContextWithCorrelationID, logging.WithCorrelationID)
}

// GetCorrelationID returns the correlation id set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return idFromGin(c, ContextKeyCorrelationID)
}
