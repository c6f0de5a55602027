package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-player/lumen/internal/audiograph"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s := Default()
	s.Volume = 0.5
	s.Theme = "light"
	s.EQ.Enabled = true
	s.EQ.Preset = "bass_boost"
	s.EQ.Gains[0] = 6
	s.Visualizer.Preset = "shader"
	s.Visualizer.Shader.Program = "corona"
	require.NoError(t, Save(path, s))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	raw := []byte("volume: 4.0\ntheme: mauve\neq:\n  gains: [99, -99]\nvisualizer:\n  sensitivity: -2\n")
	require.NoError(t, os.WriteFile(path, raw, 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Volume)
	assert.Equal(t, "dark", s.Theme)
	assert.Equal(t, 0.0, s.Visualizer.Sensitivity)
	require.Len(t, s.EQ.Gains, audiograph.NumBands)
	assert.Equal(t, audiograph.MaxGainDB, s.EQ.Gains[0])
	assert.Equal(t, audiograph.MinGainDB, s.EQ.Gains[1])
	assert.Zero(t, s.EQ.Gains[2])
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, Save(path, Default()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.yaml", entries[0].Name())
}
