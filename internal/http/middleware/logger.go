package middleware

import (
	"time"

	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware assigns a request id, exposes a scoped logger to
// handlers and logs each completed request
func RequestLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		start := time.Now()

		contextLogger := log.WithRequestID(requestID)
		c.Set(LoggerKey, contextLogger)
		c.Set(RequestIDKey, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Header(requestIDHeader, requestID)

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    statusCode,
			"latency":   time.Since(start).String(),
			"clientIP":  c.ClientIP(),
			"userAgent": c.Request.UserAgent(),
		}

		switch {
		case statusCode >= 500:
			contextLogger.LogWarn("Server error processing request", fields)
		case statusCode >= 400:
			contextLogger.LogInfo("Client error processing request", fields)
		default:
			contextLogger.LogInfo("Request completed", fields)
		}
	}
}
