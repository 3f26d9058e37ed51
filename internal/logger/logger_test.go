package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_ProductionWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "edulearn.log")

	log, cleanup, err := New(Config{Level: "info", Env: "production", File: path})
	require.NoError(t, err)
	log.Info("quiz submitted", zap.String("quiz", "web:0"))
	log.Debug("hidden")
	cleanup()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1, "debug is below the info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "quiz submitted", entry["message"])
	assert.Equal(t, "web:0", entry["quiz"])
	assert.Contains(t, entry, "@timestamp")
}

func TestNew_DevelopmentIsConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")

	log, cleanup, err := New(Config{Level: "debug", Env: "development", File: path})
	require.NoError(t, err)
	log.Debug("lesson marked", zap.Int("index", 2))
	cleanup()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "DEBUG")
	assert.Contains(t, string(raw), "lesson marked")
}

func TestNew_NoFileDiscards(t *testing.T) {
	log, cleanup, err := New(Config{Level: "warn"})
	require.NoError(t, err)
	defer cleanup()
	log.Warn("nowhere")
}

func TestNew_Rejects(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(Config{Level: "info", Env: "staging"})
	assert.Error(t, err)
}
