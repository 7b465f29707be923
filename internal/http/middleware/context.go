package middleware

import (
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/gin-gonic/gin"
)

// Context keys set by RequestLoggerMiddleware.
const (
	LoggerKey    = "logger"
	RequestIDKey = "request_id"
)

// GetLogger retrieves the request-scoped logger, or fallback when none was set
func GetLogger(c *gin.Context, fallback logger.Logger) logger.Logger {
	if log, exists := c.Get(LoggerKey); exists {
		if contextLogger, ok := log.(logger.Logger); ok {
			return contextLogger
		}
	}
	if fallback != nil {
		return fallback
	}
	return logger.NewNopLogger()
}

// GetRequestID returns the id assigned to the current request
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
