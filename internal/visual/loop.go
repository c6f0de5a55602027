package visual

import (
	"github.com/sirupsen/logrus"

	"github.com/lumen-player/lumen/internal/analyzer"
	"github.com/lumen-player/lumen/internal/audiograph"
)

var log = logrus.WithField("component", "visual")

// Snapshotter is the analysis tap as the loop sees it.
type Snapshotter interface {
	Snapshot(dst []float64) bool
	Waveform(dst []float64) int
}

// Config wires the loop to its collaborators: a tap resolver (nil result
// means "no visuals"), the current output volume, and the theme accent
// color, both polled once per tick.
type Config struct {
	ResolveTap func() Snapshotter
	Volume     func() float64
	Accent     func() string
	Theme      Theme
	ShaderLib  *Library
	Shader     ShaderOptions
	Width      int
	Height     int
}

// Loop owns the active preset, its surface, and the per-tick pipeline:
// pull a snapshot, update the analyzer, draw. It is single-threaded and
// cooperative; every method runs on the UI tick goroutine.
type Loop struct {
	cfg Config

	an      *analyzer.Analyzer
	tap     Snapshotter
	ctors   map[string]func() Preset
	active  Preset
	key     string
	surface *Surface

	running bool
	frame   string
	w, h    int

	freq []float64
	wave []float64
}

// NewLoop creates an inactive loop with the particle preset selected.
func NewLoop(cfg Config) *Loop {
	if cfg.Volume == nil {
		cfg.Volume = func() float64 { return 1 }
	}
	if cfg.Accent == nil {
		cfg.Accent = func() string { return "#FFFFFF" }
	}
	if cfg.ShaderLib == nil {
		cfg.ShaderLib = NewLibrary()
	}
	l := &Loop{
		cfg:  cfg,
		an:   analyzer.New(),
		w:    cfg.Width,
		h:    cfg.Height,
		freq: make([]float64, audiograph.SnapshotBins),
		wave: make([]float64, audiograph.FFTSize),
	}
	l.ctors = map[string]func() Preset{
		PresetParticles: func() Preset { return newParticles() },
		PresetBars:      func() Preset { return newBarGrid() },
		PresetRibbon:    func() Preset { return newRibbon() },
		PresetShader:    func() Preset { return newShaderPreset(cfg.ShaderLib, cfg.Shader) },
	}
	l.key = PresetParticles
	return l
}

// Analyzer exposes the loop's analyzer for sensitivity settings.
func (l *Loop) Analyzer() *analyzer.Analyzer { return l.an }

// Running reports whether the loop is in the Active state.
func (l *Loop) Running() bool { return l.running }

// ActivePreset returns the selected preset key.
func (l *Loop) ActivePreset() string { return l.key }

// Start resolves the tap and activates the loop, lazily creating the
// surface and the active preset. When no tap can be resolved the call is
// a safe no-op: no crash, no visuals.
func (l *Loop) Start() {
	if l.running {
		return
	}
	if l.tap == nil && l.cfg.ResolveTap != nil {
		l.tap = l.cfg.ResolveTap()
	}
	if l.tap == nil {
		log.Debug("no analysis tap available, visuals stay off")
		return
	}
	if l.active == nil {
		l.activate(l.key)
	}
	l.running = true
}

// Stop deactivates the loop and clears the last frame. Idempotent, and
// safe to call mid-draw sequence.
func (l *Loop) Stop() {
	l.running = false
	l.frame = ""
}

// SetPreset hot-swaps the active preset. The previous preset is destroyed
// before the new one's first draw, and the surface is recreated when the
// context kind changes (a surface's kind is fixed for its lifetime).
func (l *Loop) SetPreset(key string) {
	if _, ok := l.ctors[key]; !ok {
		return
	}
	if key == l.key && l.active != nil {
		return
	}
	l.key = key
	if l.active != nil || l.running {
		l.activate(key)
	}
}

// NextPreset cycles to the following preset key.
func (l *Loop) NextPreset() {
	keys := PresetKeys()
	for i, k := range keys {
		if k == l.key {
			l.SetPreset(keys[(i+1)%len(keys)])
			return
		}
	}
	l.SetPreset(keys[0])
}

func (l *Loop) activate(key string) {
	next := l.ctors[key]()
	if l.active != nil {
		l.active.Destroy()
	}
	if l.surface == nil || l.surface.Kind() != next.Kind() {
		l.surface = newSurface(next.Kind(), l.w, l.h)
	}
	l.active = next
	l.active.Resize(l.w, l.h)
}

// GraphChanged is registered with the audio graph manager; it lets a
// preset holding a direct tap reconnect before the next draw tick.
func (l *Loop) GraphChanged() {
	if r, ok := l.active.(reconnecter); ok {
		r.Reconnect()
	}
}

// Resize propagates new cell dimensions to the surface and active preset.
func (l *Loop) Resize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	l.w = w
	l.h = h
	if l.surface != nil {
		l.surface.Resize(w, h)
	}
	if l.active != nil {
		l.active.Resize(w, h)
	}
}

// Tick runs one draw cycle and returns the rendered frame. A tick where
// the tap has no fresh window keeps the previous frame; nothing in this
// path blocks or errors.
func (l *Loop) Tick(nowMs int64) string {
	if !l.running || l.active == nil {
		return l.frame
	}
	if !l.tap.Snapshot(l.freq) {
		return l.frame
	}
	n := l.tap.Waveform(l.wave)

	st := l.an.Tick(l.freq, l.cfg.Volume(), l.cfg.Accent(), nowMs)

	f := &Frame{
		Surface: l.surface,
		Freq:    l.freq,
		Wave:    l.wave[:n],
		NowMs:   nowMs,
		Theme:   l.cfg.Theme,
	}
	l.active.Draw(f, st)
	l.frame = l.surface.Canvas.Render()
	return l.frame
}

// Frame returns the last rendered frame without advancing the loop.
func (l *Loop) Frame() string { return l.frame }
