package visual

import (
	"github.com/lumen-player/lumen/internal/analyzer"
)

const (
	ribbonSlices = 24
	ribbonPoints = 96
)

// ribbon is the oscilloscope-ribbon bloom preset: each tick pushes the
// current waveform as a new slice, and the slice history is drawn
// back-to-front with perspective scale and depth falloff into the scene
// target, then run through the bloom chain.
//
// The preset holds a direct view of the graph's tap via the waveform it
// receives each frame; on a topology change the loop calls Reconnect and
// the stale history is dropped so the ribbon restarts from the new path.
type ribbon struct {
	slices     [][]float64
	destroyed  bool
	reconnects int
}

func newRibbon() *ribbon {
	return &ribbon{slices: make([][]float64, 0, ribbonSlices)}
}

func (r *ribbon) Name() string { return PresetRibbon }
func (r *ribbon) Kind() Kind   { return KindFrame }

func (r *ribbon) Resize(int, int) {}

func (r *ribbon) Destroy() {
	r.slices = nil
	r.destroyed = true
}

// Reconnect drops buffered slices after the audio graph is rebuilt.
func (r *ribbon) Reconnect() {
	r.reconnects++
	if r.slices != nil {
		r.slices = r.slices[:0]
	}
}

func (r *ribbon) Draw(f *Frame, st *analyzer.Stats) {
	if r.destroyed || f.Surface.Targets == nil {
		return
	}
	targets := f.Surface.Targets
	scene := targets.Scene
	scene.Clear()

	// Capture the newest waveform slice, downsampled to a fixed width.
	slice := make([]float64, ribbonPoints)
	if n := len(f.Wave); n > 0 {
		for i := range slice {
			slice[i] = f.Wave[i*n/ribbonPoints]
		}
	}
	if len(r.slices) == ribbonSlices {
		copy(r.slices, r.slices[1:])
		r.slices = r.slices[:ribbonSlices-1]
	}
	r.slices = append(r.slices, slice)

	w := float64(scene.W)
	h := float64(scene.H)
	hue := hueOf(st.Primary.R, st.Primary.G, st.Primary.B)
	amp := h * 0.22 * (0.6 + 0.8*st.Sensitivity)

	// Oldest slices first: deepest, smallest, dimmest.
	for si, sl := range r.slices {
		depth := float64(len(r.slices)-1-si) / ribbonSlices
		scale := 1 / (1 + depth*2.2)
		baseY := h*0.5 - depth*h*0.28
		bright := (1 - depth) * (0.35 + 0.65*st.Kick)
		thick := 1.0 + 2.2*scale

		col := rgbFromHSV(hue+depth*0.15, 0.75, 1)
		cr := float64(col.R) / 255 * bright
		cg := float64(col.G) / 255 * bright
		cb := float64(col.B) / 255 * bright

		span := w * scale
		x0 := (w - span) / 2
		px := x0
		py := baseY - sl[0]*amp*scale
		for i := 1; i < len(sl); i++ {
			x := x0 + span*float64(i)/float64(len(sl)-1)
			y := baseY - sl[i]*amp*scale
			scene.DrawLine(px, py, x, y, thick, cr, cg, cb)
			px, py = x, y
		}
	}

	blur := bloom(targets, f.Theme)
	glow := 0.45 + 0.55*st.Kick
	composite(f.Surface.Canvas, scene, blur, f.Theme, glow, st.Primary)
}
