package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/dto"
)

// MsgBodyTooLarge is reported when a request body exceeds the limit.
const MsgBodyTooLarge = "request body too large"

// BodyLimit caps request bodies at limit bytes. Reads past the cap fail
// with *http.MaxBytesError, which handlers report as PAYLOAD_TOO_LARGE.
// A declared Content-Length over the cap is refused up front.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			dto.RespondWithErrorCode(c, dto.ErrorCodeTooLarge, MsgBodyTooLarge)
			c.Abort()

			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		c.Next()
	}
}
