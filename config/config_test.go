package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emer/roomfdtd/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
time_seconds: 0.5
max_frequency_hz: 200
oversampling: 16
bands: 24
speakers: 2
distance_m: 0.5
scene: shoebox
room:
  width_m: 3
  height_m: 3
  depth_m: 3
  wall_beta: 0.1
  source_region_lo_m: [0.3, 1.5, 1.5]
  source_region_hi_m: [1.5, 1.5, 1.5]
  listener_lo_m: [2.8, 1.5, 1.5]
  listener_hi_m: [2.8, 1.5, 1.5]
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func TestLoadParsesRunConfig(t *testing.T) {
	path := writeSample(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200.0, cfg.MaxFrequencyHz)
	assert.Equal(t, 24, cfg.Bands)
	assert.Equal(t, "shoebox", cfg.Scene)
	assert.Equal(t, 3.0, cfg.Room.WidthM)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_seconds: -1\n"), 0o644))
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/path.yaml")
	require.Error(t, err)
}

func TestShoeboxSceneBuildsFromRoomConfig(t *testing.T) {
	path := writeSample(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	s := cfg.ShoeboxScene()
	assert.Equal(t, 3.0, s.WidthM)
	assert.Equal(t, 0.1, s.WallBeta)
}
