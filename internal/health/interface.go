package health

import "context"

// Checker reports whether one dependency is reachable
type Checker func(ctx context.Context) error

// Logger interface for logging operations
type Logger interface {
	LogWarn(message string, fields map[string]interface{})
}
