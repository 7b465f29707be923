package errors

// ValidationError represents a rejected upload. Message is safe to return to clients.
type ValidationError struct {
	Field   string
	Message string
}

// StorageError represents a failure to allocate or manage filesystem resources
type StorageError struct {
	Message string
	Cause   error
}

// TranscodeError represents a failed, cancelled or timed out ffmpeg run
type TranscodeError struct {
	Message  string
	ExitCode int
	// Stderr holds the tail of the process diagnostics, at most StderrExcerptLimit bytes.
	Stderr   string
	TimedOut bool
	Cause    error
}

// PersistenceError represents a failed catalog operation
type PersistenceError struct {
	Op    string
	Cause error
}
