package logger_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/emailnotify/internal/logger"
)

func TestNewSystemLogger_WritesJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, closer, err := logger.NewSystemLogger(dir, logger.Options{Level: slog.LevelInfo})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("worker started", "workers", 2)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "system.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "worker started", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.EqualValues(t, 2, rec["workers"])
}

func TestNewSystemLogger_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, _, err := logger.NewSystemLogger(filepath.Join(file, "logs"), logger.Options{})
	assert.ErrorContains(t, err, "creating log directory")
}
