package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "coordinates", cfg.Strategy)
	assert.Equal(t, 5.0, cfg.CoordinateTolerance)
	assert.Equal(t, 0.7, cfg.PhotoMatchThreshold)
	assert.Equal(t, "skip", cfg.PhotoConflicts)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
strategy = "smart"
coordinate_tolerance = 12.5
log_level = "debug"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "smart", cfg.Strategy)
	assert.Equal(t, 12.5, cfg.CoordinateTolerance)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unspecified keys keep their defaults.
	assert.Equal(t, 0.7, cfg.PhotoMatchThreshold)
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("strategy = ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesLogLevel(t *testing.T) {
	t.Setenv("MARKER_MIGRATE_LOG_LEVEL", "error")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}
