package visual

import (
	"math"

	"github.com/lumen-player/lumen/internal/analyzer"
)

const gridBands = 16

// barGrid is the immediate-mode frequency-bar preset: sixteen
// logarithmically spaced bands as vertical bars over a faint constant-Q
// overlay texture marking the band lattice.
type barGrid struct {
	bands [gridBands]float64
	peaks [gridBands]float64
	w, h  int
}

func newBarGrid() *barGrid {
	return &barGrid{}
}

func (b *barGrid) Name() string { return PresetBars }
func (b *barGrid) Kind() Kind   { return KindCell }

func (b *barGrid) Resize(w, h int) {
	b.w = w
	b.h = h
}

func (b *barGrid) Destroy() {}

var barFill = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func (b *barGrid) Draw(f *Frame, st *analyzer.Stats) {
	c := f.Surface.Canvas
	w, h := c.Size()
	c.Clear()
	if w < gridBands || h < 2 {
		return
	}

	bins := len(f.Freq)
	for band := 0; band < gridBands; band++ {
		lo := int(math.Pow(float64(bins), float64(band)/gridBands))
		hi := int(math.Pow(float64(bins), float64(band+1)/gridBands))
		if lo < 1 {
			lo = 1
		}
		if hi <= lo {
			hi = lo + 1
		}
		if hi > bins {
			hi = bins
		}

		sum := 0.0
		for i := lo; i < hi; i++ {
			sum += f.Freq[i]
		}
		mag := sum / float64(hi-lo)
		mag = clamp01(mag * (4 + 16*st.Sensitivity))

		b.bands[band] = b.bands[band]*0.3 + mag*0.7
		if b.bands[band] > b.peaks[band] {
			b.peaks[band] = b.bands[band]
		} else {
			b.peaks[band] *= 0.96
		}
	}

	// Constant-Q overlay: a dim lattice dot at every band column and
	// quarter-height row, under the bars.
	colW := w / gridBands
	if colW < 1 {
		colW = 1
	}
	for y := 0; y < h; y += maxIntV(h/4, 1) {
		for band := 0; band < gridBands; band++ {
			c.Set(band*colW+colW/2, y, '·', RGB{R: 60, G: 60, B: 72})
		}
	}

	hue := hueOf(st.Primary.R, st.Primary.G, st.Primary.B)
	for band := 0; band < gridBands; band++ {
		level := b.bands[band] * float64(h)
		full := int(level)
		frac := level - float64(full)
		x0 := band * colW

		for x := x0; x < x0+colW-1 && x < w; x++ {
			for y := 0; y < full && y < h; y++ {
				t := float64(y) / float64(h)
				c.Set(x, h-1-y, '█', rgbFromHSV(hue+0.12*t, 0.8-0.3*t, 0.5+0.5*t))
			}
			if full < h && frac > 0 {
				idx := int(frac * float64(len(barFill)))
				if idx >= len(barFill) {
					idx = len(barFill) - 1
				}
				c.Set(x, h-1-full, barFill[idx], rgbFromHSV(hue, 0.7, 0.8))
			}
		}

		// Falling peak marker, tinted toward the accent color.
		py := h - 1 - int(b.peaks[band]*float64(h))
		if py >= 0 && py < h {
			col := lerpRGB(rgbFromColorful(st.Primary), RGB{R: 255, G: 255, B: 255}, 0.5)
			c.Set(x0+colW/2, py, '─', col)
		}
	}
}

func maxIntV(a, b int) int {
	if a > b {
		return a
	}
	return b
}
