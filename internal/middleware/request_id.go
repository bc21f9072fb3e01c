package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trade-service/internal/telemetry"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id, minting one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, requestID)
		}
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}
