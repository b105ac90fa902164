package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmr-tortoise/grove/internal/config"
)

func TestNewWithoutFile(t *testing.T) {
	logger, err := New(config.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Nop logger: logging must be a no-op, not a crash.
	logger.Info("ignored")
}

func TestNewWritesJSONRecords(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "grove.log")

	logger, err := New(config.LogConfig{File: file, Level: "debug", MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	logger.Info("forest created", zap.String("forest", "foo"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "forest created", record["msg"])
	assert.Equal(t, "foo", record["forest"])
	assert.NotEmpty(t, record["ts"])
}

func TestNewRespectsLevel(t *testing.T) {
	file := filepath.Join(t.TempDir(), "grove.log")

	logger, err := New(config.LogConfig{File: file, Level: "warn", MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	logger.Info("filtered out")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filtered out")
	assert.Contains(t, string(data), "kept")
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	file := filepath.Join(t.TempDir(), "grove.log")

	logger, err := New(config.LogConfig{File: file, Level: "loud", MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	logger.Debug("below default level")
	logger.Info("at default level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "below default level")
	assert.Contains(t, string(data), "at default level")
}
