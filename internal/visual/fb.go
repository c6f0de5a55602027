package visual

import "math"

// Framebuffer is an offscreen linear-light RGB pixel buffer. Frame-kind
// presets draw into one at twice the canvas cell height, and the bloom
// chain ping-pongs between several of identical size.
type Framebuffer struct {
	W, H int
	Pix  []float64 // RGB triplets, row-major
}

func newFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{W: w, H: h, Pix: make([]float64, w*h*3)}
}

func (f *Framebuffer) Clear() {
	for i := range f.Pix {
		f.Pix[i] = 0
	}
}

func (f *Framebuffer) At(x, y int) (float64, float64, float64) {
	i := (y*f.W + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f *Framebuffer) Set(x, y int, r, g, b float64) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	i := (y*f.W + x) * 3
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
}

// Add accumulates additively, the blend mode every pass here uses.
func (f *Framebuffer) Add(x, y int, r, g, b float64) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	i := (y*f.W + x) * 3
	f.Pix[i] += r
	f.Pix[i+1] += g
	f.Pix[i+2] += b
}

// DrawLine stamps a thick anti-aliased segment by walking the segment and
// depositing soft discs, intensity falling off quadratically toward the
// disc edge.
func (f *Framebuffer) DrawLine(x0, y0, x1, y1, thickness, r, g, b float64) {
	dx := x1 - x0
	dy := y1 - y0
	length := math.Hypot(dx, dy)
	steps := int(length) + 1
	rad := thickness / 2
	if rad < 0.5 {
		rad = 0.5
	}
	ir := int(rad) + 1

	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		cx := x0 + dx*t
		cy := y0 + dy*t
		px := int(cx)
		py := int(cy)
		for oy := -ir; oy <= ir; oy++ {
			for ox := -ir; ox <= ir; ox++ {
				d := math.Hypot(float64(px+ox)+0.5-cx, float64(py+oy)+0.5-cy)
				if d > rad+0.5 {
					continue
				}
				a := 1 - d/(rad+0.5)
				a *= a
				f.Add(px+ox, py+oy, r*a, g*a, b*a)
			}
		}
	}
}

// TargetChain is the four equally-sized offscreen buffers a frame preset
// renders through: raw scene, bright-pass extraction, and the two blur
// ping-pong targets. All four always share the visible surface's pixel
// dimensions; Resize replaces them in one step so a draw never sees
// mismatched sizes.
type TargetChain struct {
	Scene     *Framebuffer
	Bright    *Framebuffer
	BlurA     *Framebuffer
	BlurFinal *Framebuffer
}

func newTargetChain(w, h int) *TargetChain {
	c := &TargetChain{}
	c.Resize(w, h)
	return c
}

func (c *TargetChain) Size() (int, int) {
	return c.Scene.W, c.Scene.H
}

// Resize reallocates all four targets at the new dimensions atomically
// with respect to the draw path: the chain is only ever touched from the
// render tick, and every buffer is swapped before Resize returns.
func (c *TargetChain) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if c.Scene != nil && c.Scene.W == w && c.Scene.H == h {
		return
	}
	scene := newFramebuffer(w, h)
	bright := newFramebuffer(w, h)
	blurA := newFramebuffer(w, h)
	blurFinal := newFramebuffer(w, h)
	c.Scene, c.Bright, c.BlurA, c.BlurFinal = scene, bright, blurA, blurFinal
}
