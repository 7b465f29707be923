package video

import (
	"context"

	"github.com/consensuslabs/vodstream/internal/logger"
)

// Repository is the catalog of completed videos
type Repository interface {
	// Insert records a video whose playlist already exists at streamPath
	Insert(ctx context.Context, title, description, streamPath string) (*Video, error)
	// List returns every video, newest first
	List(ctx context.Context) ([]Video, error)
	// StreamPaths returns the file_path of every catalogued video
	StreamPaths(ctx context.Context) ([]string, error)
}

// IngestService turns staged uploads into catalogued HLS streams
type IngestService interface {
	Ingest(ctx context.Context, upload Upload) (*Video, error)
	ListVideos(ctx context.Context) ([]Video, error)
}

// Stager names the staging file an incoming upload is written to
type Stager interface {
	StagePath(originalName string) string
}

// Logger interface for logging operations
type Logger = logger.Logger
