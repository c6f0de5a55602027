package visual

import "github.com/lumen-player/lumen/internal/analyzer"

// Kind is the surface context a preset requires. A surface's kind is
// fixed for its lifetime; switching between an immediate and a
// framebuffer preset recreates the surface.
type Kind uint8

const (
	// KindCell presets draw runes straight onto the canvas.
	KindCell Kind = iota
	// KindFrame presets render into the offscreen target chain and
	// composite through the bloom pipeline.
	KindFrame
)

// Surface is the drawing target handed to presets: always a cell canvas,
// plus the offscreen target chain for frame-kind surfaces. Frame pixels
// run at twice the canvas cell height (half-block cells).
type Surface struct {
	kind    Kind
	Canvas  *Canvas
	Targets *TargetChain
}

func newSurface(kind Kind, w, h int) *Surface {
	s := &Surface{kind: kind, Canvas: newCanvas(w, h)}
	if kind == KindFrame {
		s.Targets = newTargetChain(w, h*2)
	}
	return s
}

func (s *Surface) Kind() Kind { return s.kind }

// Resize grows or shrinks the canvas and, for frame surfaces, swaps the
// whole target chain before returning so the next draw never sees
// mismatched buffers.
func (s *Surface) Resize(w, h int) {
	s.Canvas.resize(w, h)
	if s.Targets != nil {
		s.Targets.Resize(w, h*2)
	}
}

// Frame is the per-tick draw context: the surface, the current frequency
// snapshot and recent waveform, and the tick timestamp.
type Frame struct {
	Surface *Surface
	Freq    []float64
	Wave    []float64
	NowMs   int64
	Theme   Theme
}

// Preset is one pluggable visualizer. The set is closed: particles and
// bars draw immediately, ribbon and shader render through the bloom
// pipeline. Device-side state is created lazily on first activation and
// released by Destroy.
type Preset interface {
	Name() string
	Kind() Kind
	Draw(f *Frame, st *analyzer.Stats)
	Resize(w, h int)
	Destroy()
}

// reconnecter is implemented by presets holding a direct tap into the
// audio graph; the loop calls it when the graph topology changes so they
// re-tap before the next draw.
type reconnecter interface {
	Reconnect()
}

// Preset keys, in cycling order.
const (
	PresetParticles = "particles"
	PresetBars      = "bars"
	PresetRibbon    = "ribbon"
	PresetShader    = "shader"
)

// PresetKeys returns the closed preset set in display order.
func PresetKeys() []string {
	return []string{PresetParticles, PresetBars, PresetRibbon, PresetShader}
}
