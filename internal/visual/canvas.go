package visual

import "strings"

type cell struct {
	r     rune
	fg    RGB
	bg    RGB
	hasFg bool
	hasBg bool
}

// Canvas is a character-cell drawing surface. Immediate presets write
// runes with a foreground color; framebuffer composites write half-block
// cells where the foreground is the upper pixel and the background the
// lower.
type Canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *Canvas {
	return &Canvas{w: w, h: h, cells: make([]cell, w*h)}
}

func (c *Canvas) Size() (int, int) { return c.w, c.h }

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
}

func (c *Canvas) resize(w, h int) {
	if w == c.w && h == c.h {
		return
	}
	c.w = w
	c.h = h
	c.cells = make([]cell, w*h)
}

// Set places a colored rune; out-of-bounds coordinates are ignored.
func (c *Canvas) Set(x, y int, r rune, fg RGB) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell{r: r, fg: fg, hasFg: true}
}

// SetBlock places a half-block cell carrying two vertical pixels.
func (c *Canvas) SetBlock(x, y int, upper, lower RGB) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell{r: '▀', fg: upper, bg: lower, hasFg: true, hasBg: true}
}

// Render emits the canvas as ANSI-colored lines.
func (c *Canvas) Render() string {
	var out strings.Builder
	out.Grow(c.w*c.h + c.h)
	state := newANSIState()

	for y := 0; y < c.h; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			cl := c.cells[y*c.w+x]
			if cl.r == 0 {
				state.clearBg(&out)
				out.WriteByte(' ')
				continue
			}
			if cl.hasFg {
				state.setFg(&out, cl.fg)
			}
			if cl.hasBg {
				state.setBg(&out, cl.bg)
			} else {
				state.clearBg(&out)
			}
			out.WriteRune(cl.r)
		}
		state.reset(&out)
	}
	return out.String()
}
