package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Video.MaxConcurrent)
	assert.Equal(t, "kling-v2-6", cfg.Video.Model)
	assert.Equal(t, "1920x1080", cfg.Compose.Resolution)
	assert.Equal(t, -1, cfg.Compose.MaxFailedTransitions)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
video:
  mode: std
  max_concurrent: 2
compose:
  fps: 30
  max_failed_transitions: 1
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "std", cfg.Video.Mode)
	assert.Equal(t, 2, cfg.Video.MaxConcurrent)
	assert.Equal(t, 30, cfg.Compose.FPS)
	assert.Equal(t, 1, cfg.Compose.MaxFailedTransitions)

	// untouched sections keep their defaults
	assert.Equal(t, "5", cfg.Video.Duration)
	assert.Equal(t, "1920x1080", cfg.Compose.Resolution)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("video: [broken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
