package http

import (
	"github.com/consensuslabs/vodstream/internal/logger"
	"github.com/gin-gonic/gin"
)

// ResponseHandler defines the interface for handling HTTP responses
type ResponseHandler interface {
	JSON(c *gin.Context, status int, data interface{})
	// ErrorResponse writes {"error": message} and logs err with the request's logger.
	ErrorResponse(c *gin.Context, status int, message string, err error)
	InternalErrorResponse(c *gin.Context, message string, err error)
}

// Logger interface for logging operations
type Logger = logger.Logger
