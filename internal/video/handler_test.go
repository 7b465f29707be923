package video

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	apperrors "github.com/consensuslabs/vodstream/internal/errors"
	httpapi "github.com/consensuslabs/vodstream/internal/http"
	"github.com/consensuslabs/vodstream/internal/http/middleware"
	"github.com/consensuslabs/vodstream/internal/video/layout"
	"github.com/consensuslabs/vodstream/testhelper"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, service IngestService, stager Stager) *gin.Engine {
	t.Helper()
	log := testhelper.NewTestLogger(false)
	router := gin.New()
	router.Use(middleware.RequestLoggerMiddleware(log))
	NewHandler(service, stager, httpapi.NewResponseHandler(log), log).RegisterRoutes(router)
	return router
}

func newTestStager(t *testing.T) *layout.Manager {
	t.Helper()
	root := t.TempDir()
	manager, err := layout.NewManager(&layout.Config{
		StreamRoot: filepath.Join(root, "stream"),
		StagingDir: filepath.Join(root, "uploads"),
	}, testhelper.NewTestLogger(false))
	require.NoError(t, err)
	return manager
}

// newUploadRequest builds a multipart POST /upload; an empty fileName omits the file part
func newUploadRequest(t *testing.T, fields map[string]string, fileName string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("not really a video"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndStream(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegSucceed)
	router := newTestRouter(t, p.service, p.layout)
	require.NoError(t, httpapi.ServeStaticFiles(router, []httpapi.StaticFileConfig{
		{URLPath: "/stream", FilePath: p.layout.StreamRoot()},
	}))

	w := serve(router, newUploadRequest(t, map[string]string{"title": "Holiday", "description": "beach"}, "holiday.mp4"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Video uploaded and converted successfully", resp.Message)
	assert.NotZero(t, resp.VideoID)
	assert.Regexp(t, streamPathPattern, resp.StreamPath)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/videos", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var videos []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	require.Len(t, videos, 1)
	assert.Equal(t, float64(resp.VideoID), videos[0]["id"])
	assert.Equal(t, "Holiday", videos[0]["title"])
	assert.Equal(t, "beach", videos[0]["description"])
	assert.Equal(t, resp.StreamPath, videos[0]["file_path"])
	assert.NotEmpty(t, videos[0]["uploaded_at"])

	w = serve(router, httptest.NewRequest(http.MethodGet, "/stream/"+resp.StreamPath, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#EXTM3U")

	staged, err := p.layout.ListStaged()
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestUploadMissingTitle(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegSucceed)
	router := newTestRouter(t, p.service, p.layout)

	w := serve(router, newUploadRequest(t, map[string]string{"description": "no title"}, "clip.mp4"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Title is required"}`, w.Body.String())

	staged, err := p.layout.ListStaged()
	require.NoError(t, err)
	assert.Empty(t, staged)
	assert.Empty(t, p.outputDirs(t))
}

func TestUploadMissingFile(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegSucceed)
	router := newTestRouter(t, p.service, p.layout)

	w := serve(router, newUploadRequest(t, map[string]string{"title": "No file"}, ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No video file uploaded"}`, w.Body.String())
	assert.Empty(t, p.outputDirs(t))
}

func TestUploadConversionFailure(t *testing.T) {
	p := newTestPipeline(t, testhelper.FFmpegFail)
	router := newTestRouter(t, p.service, p.layout)

	w := serve(router, newUploadRequest(t, map[string]string{"title": "Corrupt"}, "corrupt.mp4"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error converting video"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Invalid data")

	w = serve(router, httptest.NewRequest(http.MethodGet, "/videos", nil))
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Empty(t, p.outputDirs(t))
}

func TestUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", apperrors.NewValidationError("title", apperrors.ErrMsgTitleRequired), http.StatusBadRequest, `{"error":"Title is required"}`},
		{"transcode", apperrors.NewTimeoutError("ffmpeg exceeded its time limit", "", nil), http.StatusInternalServerError, `{"error":"Error converting video"}`},
		{"storage", apperrors.NewStorageError("failed to allocate output directory", errors.New("EEXIST")), http.StatusInternalServerError, `{"error":"Error uploading video"}`},
		{"persistence", apperrors.NewPersistenceError("insert", errors.New("db down")), http.StatusInternalServerError, `{"error":"Error uploading video"}`},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, `{"error":"Error uploading video"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockIngestService{}
			service.On("Ingest", mock.Anything, mock.AnythingOfType("video.Upload")).Return(nil, tt.err)
			router := newTestRouter(t, service, newTestStager(t))

			w := serve(router, newUploadRequest(t, map[string]string{"title": "x"}, "x.mp4"))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			service.AssertExpectations(t)
		})
	}
}

func TestUploadPassesFormAndRequestID(t *testing.T) {
	service := &MockIngestService{}
	service.On("Ingest", mock.Anything, mock.MatchedBy(func(u Upload) bool {
		return u.Title == "Title" &&
			u.Description == "Desc" &&
			u.OriginalName == "movie.MOV" &&
			u.Size == int64(len("not really a video")) &&
			filepath.Ext(u.SourcePath) == ".mov" &&
			u.RequestID != ""
	})).Return(&Video{ID: 3, FilePath: "stream_x/output_x.m3u8"}, nil)

	router := newTestRouter(t, service, newTestStager(t))
	w := serve(router, newUploadRequest(t, map[string]string{"title": "Title", "description": "Desc"}, "movie.MOV"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Video uploaded and converted successfully","videoId":3,"streamPath":"stream_x/output_x.m3u8"}`, w.Body.String())
	service.AssertExpectations(t)
}

func TestListVideosEmpty(t *testing.T) {
	service := &MockIngestService{}
	service.On("ListVideos", mock.Anything).Return(nil, nil)
	router := newTestRouter(t, service, newTestStager(t))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/videos", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListVideosFailure(t *testing.T) {
	service := &MockIngestService{}
	service.On("ListVideos", mock.Anything).Return(nil, apperrors.NewPersistenceError("list", errors.New("db down")))
	router := newTestRouter(t, service, newTestStager(t))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/videos", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error fetching videos"}`, w.Body.String())
}
