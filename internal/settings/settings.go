// Package settings persists user preferences between runs: EQ state,
// visualizer mode and sensitivity, theme and accent color.
package settings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lumen-player/lumen/internal/audiograph"
)

const (
	DefaultVolume      = 0.8
	DefaultSensitivity = 0.5
	DefaultPreset      = "particles"
	DefaultTheme       = "dark"
	DefaultAccent      = "#7aa2f7"
	DefaultCycleMs     = 15000
)

type Settings struct {
	Volume     float64          `yaml:"volume"`
	Theme      string           `yaml:"theme"`
	Accent     string           `yaml:"accent"`
	EQ         EQSettings       `yaml:"eq"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
}

type EQSettings struct {
	Enabled bool      `yaml:"enabled"`
	Preset  string    `yaml:"preset"`
	Gains   []float64 `yaml:"gains"`
	Mono    bool      `yaml:"mono"`
}

type VisualizerConfig struct {
	Enabled     bool           `yaml:"enabled"`
	Preset      string         `yaml:"preset"`
	Sensitivity float64        `yaml:"sensitivity"`
	Smart       bool           `yaml:"smart"`
	Shader      ShaderSettings `yaml:"shader"`
}

type ShaderSettings struct {
	Cycle     bool   `yaml:"cycle"`
	CycleMs   int64  `yaml:"cycle_ms"`
	Randomize bool   `yaml:"randomize"`
	Program   string `yaml:"program"`
}

func Default() *Settings {
	return &Settings{
		Volume: DefaultVolume,
		Theme:  DefaultTheme,
		Accent: DefaultAccent,
		EQ: EQSettings{
			Preset: "flat",
			Gains:  make([]float64, audiograph.NumBands),
		},
		Visualizer: VisualizerConfig{
			Enabled:     true,
			Preset:      DefaultPreset,
			Sensitivity: DefaultSensitivity,
			Smart:       true,
			Shader: ShaderSettings{
				Cycle:   true,
				CycleMs: DefaultCycleMs,
			},
		},
	}
}

// DefaultPath returns the per-user settings location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lumen", "settings.yaml"), nil
}

// Load reads settings from path. A missing file is not an error: the
// defaults come back so first runs just work.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	s.normalize()
	return s, nil
}

// Save writes settings atomically: marshal to a sibling temp file, then
// rename over the target so a crash never leaves a torn file.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// normalize clamps loaded values into their valid ranges so a
// hand-edited file cannot push the runtime out of bounds.
func (s *Settings) normalize() {
	if s.Volume < 0 {
		s.Volume = 0
	}
	if s.Volume > 1 {
		s.Volume = 1
	}
	if s.Visualizer.Sensitivity < 0 {
		s.Visualizer.Sensitivity = 0
	}
	if s.Visualizer.Sensitivity > 1 {
		s.Visualizer.Sensitivity = 1
	}
	if s.Visualizer.Shader.CycleMs <= 0 {
		s.Visualizer.Shader.CycleMs = DefaultCycleMs
	}
	if s.Theme != "dark" && s.Theme != "light" {
		s.Theme = DefaultTheme
	}
	if len(s.EQ.Gains) != audiograph.NumBands {
		gains := make([]float64, audiograph.NumBands)
		copy(gains, s.EQ.Gains)
		s.EQ.Gains = gains
	}
	for i, g := range s.EQ.Gains {
		if g < audiograph.MinGainDB {
			s.EQ.Gains[i] = audiograph.MinGainDB
		}
		if g > audiograph.MaxGainDB {
			s.EQ.Gains[i] = audiograph.MaxGainDB
		}
	}
}
