package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/cohort/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSONToDefaultFile(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "state")

	logger, err := New(config.Log{Format: "json"}, stateDir, false)
	require.NoError(t, err)
	logger.Info("ledger.held", zap.String("date", "18/06/2025"))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(stateDir, DefaultFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug entries are below the default level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "ledger.held", entry["msg"])
	require.Equal(t, "18/06/2025", entry["date"])
}

func TestNew_DebugFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.log")

	logger, err := New(config.Log{Level: "error", File: path}, "", true)
	require.NoError(t, err)
	logger.Debug("visible")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "visible")
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(config.Log{Level: "loud"}, t.TempDir(), false)
	require.Error(t, err)

	_, err = New(config.Log{Format: "xml"}, t.TempDir(), false)
	require.Error(t, err)
}
