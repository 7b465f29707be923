package testhelper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogger(t *testing.T) {
	t.Run("Basic Logging", func(t *testing.T) {
		logger := NewTestLogger(true)

		logger.LogInfo("test info", map[string]interface{}{"key": "value"})
		logger.LogError(errors.New("test error"), "error message")
		logger.LogWarn("test warning", nil)
		logger.LogDebug("test debug", nil)

		assert.Len(t, logger.GetInfoMessages(), 1)
		assert.Len(t, logger.GetErrorMessages(), 1)
		assert.Len(t, logger.GetWarnMessages(), 1)
		assert.Len(t, logger.GetDebugMessages(), 1)
		assert.True(t, logger.HasError("error message"))
	})

	t.Run("Debug Disabled", func(t *testing.T) {
		logger := NewTestLogger(false)
		logger.LogDebug("ignored", nil)
		assert.Empty(t, logger.GetDebugMessages())
	})

	t.Run("Derived Loggers Share Entries", func(t *testing.T) {
		logger := NewTestLogger(true)
		jobLogger := logger.WithJobID("job-1").WithFields(map[string]interface{}{"base": "value"})

		jobLogger.LogInfo("test", map[string]interface{}{"additional": "value"})

		messages := logger.GetInfoMessages()
		require.Len(t, messages, 1)
		assert.Equal(t, "job-1", messages[0].Fields["jobID"])
		assert.Equal(t, "value", messages[0].Fields["base"])
		assert.Equal(t, "value", messages[0].Fields["additional"])
	})

	t.Run("Fatal Does Not Exit", func(t *testing.T) {
		logger := NewTestLogger(true)
		logger.LogFatal(errors.New("fatal error"), "fatal context")

		messages := logger.GetErrorMessages()
		require.Len(t, messages, 1)
		assert.Equal(t, "fatal error", messages[0].Fields["error"])
		assert.Equal(t, "fatal context", messages[0].Fields["context"])
	})

	t.Run("Error Formatting", func(t *testing.T) {
		logger := NewTestLogger(true)
		err := logger.LogErrorf(errors.New("formatted error"), "error with %s", "formatting")

		assert.EqualError(t, err, "formatted error")
		assert.True(t, logger.HasError("error with formatting"))
	})

	t.Run("Message Clearing", func(t *testing.T) {
		logger := NewTestLogger(true)
		logger.LogInfo("test info", nil)
		logger.LogWarn("test warning", nil)
		logger.ClearMessages()

		assert.Empty(t, logger.GetInfoMessages())
		assert.Empty(t, logger.GetWarnMessages())
	})
}
