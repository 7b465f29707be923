package http

import (
	"net/http"

	"github.com/consensuslabs/vodstream/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

// responseHandler implements the ResponseHandler interface
type responseHandler struct {
	logger Logger
}

// NewResponseHandler creates a new instance of ResponseHandler
func NewResponseHandler(logger Logger) ResponseHandler {
	return &responseHandler{
		logger: logger,
	}
}

func (h *responseHandler) JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func (h *responseHandler) ErrorResponse(c *gin.Context, status int, message string, err error) {
	if err != nil {
		log := middleware.GetLogger(c, h.logger)
		if status >= http.StatusInternalServerError {
			log.LogError(err, message)
		} else {
			log.LogInfo(message, map[string]interface{}{"reason": err.Error()})
		}
	}
	c.JSON(status, ErrorBody{Error: message})
}

func (h *responseHandler) InternalErrorResponse(c *gin.Context, message string, err error) {
	h.ErrorResponse(c, http.StatusInternalServerError, message, err)
}
