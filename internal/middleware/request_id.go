package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the Gin context key (and response header) used to correlate
// log lines belonging to one request.
const RequestIDKey = "request_id"

// RequestID assigns each request a UUID, honoring an incoming X-Request-ID
// so the frontend can correlate retries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
