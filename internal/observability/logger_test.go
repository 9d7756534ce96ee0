// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/embody-cli/internal/config"
)

// bufferSink is a WriteSyncer over an in-memory buffer.
type bufferSink struct{ bytes.Buffer }

func (b *bufferSink) Sync() error { return nil }

func TestNewLogger(t *testing.T) {
	t.Run("console output colors the configured level", func(t *testing.T) {
		var sink bufferSink
		logger := NewLogger(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "embody",
			Colors:      config.ColorConfig{Info: "green"},
		}, &sink)

		logger.Named("agent").Info("Action archived.")
		out := sink.String()
		assert.Contains(t, out, ansiColors["green"]+"INFO"+ansiReset)
		assert.Contains(t, out, "embody.agent.")
		assert.Contains(t, out, "Action archived.")
	})

	t.Run("json output", func(t *testing.T) {
		var sink bufferSink
		logger := NewLogger(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, &sink)
		logger.Warn("Interaction failed.", zap.String("effector", "left_hand"))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(sink.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "left_hand", entry["effector"])
	})

	t.Run("level filters", func(t *testing.T) {
		var sink bufferSink
		logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "json"}, &sink)
		logger.Info("hidden")
		assert.Empty(t, sink.String())
	})

	t.Run("bad level falls back to info", func(t *testing.T) {
		var sink bufferSink
		logger := NewLogger(config.LoggerConfig{Level: "chatty", Format: "json"}, &sink)
		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, sink.String(), "hidden")
		assert.Contains(t, sink.String(), "shown")
	})

	t.Run("log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "embody.log")
		logger := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&bufferSink{}))
		logger.Error("to the file")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"to the file"`)
	})
}

func TestInitialize(t *testing.T) {
	t.Cleanup(ResetForTest)

	t.Run("only the first call counts", func(t *testing.T) {
		ResetForTest()
		var sink bufferSink
		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, &sink)
		first := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, &sink)

		assert.Same(t, first, GetLogger())
		GetLogger().Info("test")
		Sync()
		assert.True(t, strings.Contains(sink.String(), "First"))
		assert.False(t, strings.Contains(sink.String(), "Second"))
	})

	t.Run("fallback before initialization", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.Nil(t, globalLogger.Load())
	})
}
