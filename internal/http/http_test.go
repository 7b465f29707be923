package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensuslabs/vodstream/internal/http/middleware"
	"github.com/consensuslabs/vodstream/testhelper"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorResponse(t *testing.T) {
	testLogger := testhelper.NewTestLogger(false)
	handler := NewResponseHandler(testLogger)

	router := gin.New()
	router.GET("/bad", func(c *gin.Context) {
		handler.ErrorResponse(c, http.StatusBadRequest, "Title is required", errors.New("empty title"))
	})
	router.GET("/fail", func(c *gin.Context) {
		handler.InternalErrorResponse(c, "Error converting video", errors.New("exit status 1: /tmp/secret/path"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Title is required"}`, w.Body.String())
	assert.Empty(t, testLogger.GetErrorMessages())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error converting video"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "/tmp/secret")
	assert.True(t, testLogger.HasError("Error converting video"))
}

func TestErrorResponseUsesRequestLogger(t *testing.T) {
	testLogger := testhelper.NewTestLogger(false)
	handler := NewResponseHandler(testLogger)

	router := gin.New()
	router.Use(middleware.RequestLoggerMiddleware(testLogger))
	router.GET("/fail", func(c *gin.Context) {
		handler.InternalErrorResponse(c, "Error uploading video", errors.New("disk full"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	errs := testLogger.GetErrorMessages()
	require.Len(t, errs, 1)
	assert.Equal(t, w.Header().Get("X-Request-ID"), errs[0].Fields["requestID"])
}

func TestRecoveryMiddleware(t *testing.T) {
	testLogger := testhelper.NewTestLogger(false)
	router := gin.New()
	router.Use(RecoveryMiddleware(NewResponseHandler(testLogger)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred", body.Error)
	assert.Len(t, testLogger.GetErrorMessages(), 1)
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware())
	router.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/upload", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeStaticFiles(t *testing.T) {
	root := t.TempDir()
	jobDir := filepath.Join(root, "stream_abc")
	require.NoError(t, os.Mkdir(jobDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(jobDir, "output_abc.m3u8"), []byte("#EXTM3U\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(jobDir, "segment_000.ts"), []byte("ts"), 0644))

	router := gin.New()
	require.NoError(t, ServeStaticFiles(router, []StaticFileConfig{{URLPath: "/stream", FilePath: root}}))

	t.Run("playlist", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream/stream_abc/output_abc.m3u8", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/vnd.apple.mpegurl", w.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		assert.Equal(t, "#EXTM3U\n", w.Body.String())
	})

	t.Run("segment", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream/stream_abc/segment_000.ts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "video/mp2t", w.Header().Get("Content-Type"))
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream/stream_abc/nope.ts", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no directory listing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream/stream_abc/", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServeStaticFilesMissingRoot(t *testing.T) {
	err := ServeStaticFiles(gin.New(), []StaticFileConfig{{URLPath: "/stream", FilePath: filepath.Join(t.TempDir(), "absent")}})
	assert.Error(t, err)
}
