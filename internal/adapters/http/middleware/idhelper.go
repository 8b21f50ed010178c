package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIDLength caps caller-supplied ids; longer values are replaced.
const maxIDLength = 128

type enricher func(ctx context.Context, id string) context.Context

// idMiddleware reads an id from header, generating one when it is missing
// or oversized, then publishes it on the gin context, the response headers
// and the request context through each enricher.
func idMiddleware(header, key string, enrichers ...enricher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" || len(id) > maxIDLength {
			id = uuid.NewString()
		}

		c.Set(key, id)
		c.Header(header, id)

		ctx := c.Request.Context()
		for _, enrich := range enrichers {
			ctx = enrich(ctx, id)
		}

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func idFromGin(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ""
}
