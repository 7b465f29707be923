package video

import (
	"errors"
	"net/http"
	"os"

	apperrors "github.com/consensuslabs/vodstream/internal/errors"
	httpapi "github.com/consensuslabs/vodstream/internal/http"
	"github.com/consensuslabs/vodstream/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handler serves the upload and catalog endpoints
type Handler struct {
	service   IngestService
	stager    Stager
	responses httpapi.ResponseHandler
	logger    Logger
}

// NewHandler creates a new Handler instance
func NewHandler(service IngestService, stager Stager, responses httpapi.ResponseHandler, logger Logger) *Handler {
	return &Handler{
		service:   service,
		stager:    stager,
		responses: responses,
		logger:    logger,
	}
}

// RegisterRoutes mounts the handler's endpoints
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/upload", h.HandleUpload)
	router.GET("/videos", h.ListVideos)
}

// HandleUpload stages the multipart "file" field and runs it through the
// ingest pipeline before answering.
func (h *Handler) HandleUpload(c *gin.Context) {
	log := middleware.GetLogger(c, h.logger)

	upload := Upload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		RequestID:   middleware.GetRequestID(c),
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.LogDebug("No video file in request", map[string]interface{}{"error": err.Error()})
	} else {
		staged := h.stager.StagePath(fileHeader.Filename)
		if err := c.SaveUploadedFile(fileHeader, staged); err != nil {
			h.responses.InternalErrorResponse(c, apperrors.ErrMsgUpload, err)
			removeStaged(staged, log)
			return
		}
		upload.SourcePath = staged
		upload.OriginalName = fileHeader.Filename
		upload.Size = fileHeader.Size
	}

	video, err := h.service.Ingest(c.Request.Context(), upload)
	if err != nil {
		h.respondIngestError(c, err)
		return
	}

	h.responses.JSON(c, http.StatusOK, UploadResponse{
		Message:    UploadSuccessMessage,
		VideoID:    video.ID,
		StreamPath: video.FilePath,
	})
}

// ListVideos returns the whole catalog, newest first
func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.service.ListVideos(c.Request.Context())
	if err != nil {
		h.responses.InternalErrorResponse(c, apperrors.ErrMsgListVideos, err)
		return
	}
	if videos == nil {
		videos = []Video{}
	}
	h.responses.JSON(c, http.StatusOK, videos)
}

func (h *Handler) respondIngestError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	var terr *apperrors.TranscodeError

	switch {
	case errors.As(err, &verr):
		h.responses.ErrorResponse(c, http.StatusBadRequest, verr.Message, err)
	case errors.As(err, &terr):
		h.responses.InternalErrorResponse(c, apperrors.ErrMsgConversion, err)
	default:
		h.responses.InternalErrorResponse(c, apperrors.ErrMsgUpload, err)
	}
}

func removeStaged(path string, log Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.LogWarn("Failed to remove partial upload", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}
