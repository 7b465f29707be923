package http

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensuslabs/vodstream/internal/storage"
	"github.com/gin-gonic/gin"
)

// StaticFileConfig represents configuration for static file serving
type StaticFileConfig struct {
	URLPath  string // URL path to serve files from
	FilePath string // Physical path to the files
}

// ServeStaticFiles mounts read-only HLS output under each URL prefix
func ServeStaticFiles(router gin.IRoutes, configs []StaticFileConfig) error {
	for _, config := range configs {
		if _, err := os.Stat(config.FilePath); os.IsNotExist(err) {
			return fmt.Errorf("static file directory does not exist: %s", config.FilePath)
		}

		absPath, err := filepath.Abs(config.FilePath)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %v", config.FilePath, err)
		}

		prefix := strings.TrimSuffix(config.URLPath, "/")
		fileServer := http.StripPrefix(prefix, http.FileServer(noListingFS{http.Dir(absPath)}))

		handler := func(c *gin.Context) {
			name := c.Param("path")
			switch strings.ToLower(filepath.Ext(name)) {
			case ".m3u8":
				c.Header("Content-Type", storage.ContentTypePlaylist)
				c.Header("Cache-Control", "no-cache")
			case ".ts":
				c.Header("Content-Type", storage.ContentTypeSegment)
				c.Header("Cache-Control", "public, max-age=31536000, immutable")
			}
			fileServer.ServeHTTP(c.Writer, c.Request)
		}

		router.GET(prefix+"/*path", handler)
		router.HEAD(prefix+"/*path", handler)
	}

	return nil
}

// noListingFS hides directory indexes
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
