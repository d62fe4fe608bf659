package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("logging:\n  level: debug\nsimulation:\n  workers: 3\nstorage:\n  path: "+dir+"/runs.db\n"), 0o644))
	t.Setenv("PLANNER_SIMULATION_SEED", "77")

	s, err := LoadSettings(viper.New(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "console", s.Logging.Format)
	assert.Equal(t, 3, s.Simulation.Workers)
	assert.Equal(t, int64(77), s.Simulation.Seed)
	assert.Equal(t, filepath.Join(dir, "runs.db"), s.Storage.Path)
	assert.Equal(t, "console", s.Output.Format)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	_, err := LoadSettings(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PLANNER_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Join(home, "runs.db"), ExpandPath("~/runs.db"))
	assert.Equal(t, "/data/runs.db", ExpandPath("$PLANNER_TEST_DIR/runs.db"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)
	l.Info("dropped")
	l.Warn("kept", "year", 2031)
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"year":2031`)

	_, err = NewLogger("loud", "console", &buf)
	assert.Error(t, err)
	_, err = NewLogger("info", "xml", &buf)
	assert.Error(t, err)
}
