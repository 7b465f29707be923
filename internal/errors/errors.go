package errors

import (
	"fmt"
	"unicode/utf8"
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error { return e.Cause }

func (e *TranscodeError) Error() string {
	msg := e.Message
	if e.TimedOut {
		msg += " (timed out)"
	} else if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TranscodeError) Unwrap() error { return e.Cause }

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("catalog %s failed", e.Op)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewStorageError creates a new StorageError
func NewStorageError(message string, cause error) *StorageError {
	return &StorageError{
		Message: message,
		Cause:   cause,
	}
}

// NewTranscodeError creates a new TranscodeError. The stderr text is cut to
// its last StderrExcerptLimit bytes.
func NewTranscodeError(message string, exitCode int, stderr string, cause error) *TranscodeError {
	return &TranscodeError{
		Message:  message,
		ExitCode: exitCode,
		Stderr:   Excerpt(stderr, StderrExcerptLimit),
		Cause:    cause,
	}
}

// NewTimeoutError creates a TranscodeError for a run that exceeded its deadline
func NewTimeoutError(message string, stderr string, cause error) *TranscodeError {
	e := NewTranscodeError(message, -1, stderr, cause)
	e.TimedOut = true
	return e
}

// NewPersistenceError creates a new PersistenceError
func NewPersistenceError(op string, cause error) *PersistenceError {
	return &PersistenceError{
		Op:    op,
		Cause: cause,
	}
}

// Excerpt returns at most the last limit bytes of s, starting on a rune
// boundary.
func Excerpt(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	start := len(s) - limit
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
