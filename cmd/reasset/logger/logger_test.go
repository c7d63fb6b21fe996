package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reasset.log")
	require.NoError(t, Init(Options{Enabled: true, File: path, Level: "debug"}))
	Debug("decoded", "kind", "uvar", "variables", 3)
	Close()
	t.Cleanup(func() { _ = Init(Options{}) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "decoded", rec["msg"])
	assert.Equal(t, "uvar", rec["kind"])
}

func TestInitLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	require.NoError(t, Init(Options{Enabled: true, File: path, Level: "warn"}))
	Info("hidden")
	Warn("shown")
	Close()
	t.Cleanup(func() { _ = Init(Options{}) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	require.Error(t, Init(Options{Enabled: true, Level: "loud"}))
}

func TestDisabledDiscards(t *testing.T) {
	require.NoError(t, Init(Options{}))
	assert.False(t, L.Enabled(t.Context(), -100))
}
