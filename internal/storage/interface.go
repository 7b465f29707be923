package storage

import "context"

// Mirror copies finished HLS output to secondary storage
type Mirror interface {
	// UploadDir uploads every regular file under dir below keyPrefix and
	// returns how many objects were written.
	UploadDir(ctx context.Context, dir, keyPrefix string) (int, error)
}

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogDebug(message string, fields map[string]interface{})
	LogError(err error, msg string) error
}
