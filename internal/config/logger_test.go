package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "teleview.log")
	logger, err := InitLogger(&LoggingConfig{Level: "debug", File: path, MaxSize: 1})
	require.NoError(t, err)

	logger.Debug("tuned", slog.String("channel", "BBC One"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tuned")
	assert.Contains(t, string(data), "BBC One")
}

func TestInitLoggerLevelGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teleview.log")
	logger, err := InitLogger(&LoggingConfig{Level: "warn", File: path, MaxSize: 1})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestLogLevelParsing(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logLevel("WARNING"))
	assert.Equal(t, slog.LevelError, logLevel("error"))
	assert.Equal(t, slog.LevelInfo, logLevel("bogus"))
}
