package visual

import colorful "github.com/lucasb-eyer/go-colorful"

// Theme selects the bloom's extraction metric and composite mode: dark
// themes glow (brightness metric, additive composite), light themes tint
// (saturation metric, blend toward the glow color).
type Theme uint8

const (
	ThemeDark Theme = iota
	ThemeLight
)

const (
	brightThresholdDark  = 0.55
	brightThresholdLight = 0.35

	blurPasses = 3
)

// 9-tap Gaussian, normalized. Run separably with a doubling step size to
// approximate a much larger radius without a larger kernel.
var blurKernel = [9]float64{
	0.0162, 0.0540, 0.1216, 0.1945, 0.2270, 0.1945, 0.1216, 0.0540, 0.0162,
}

// brightPass extracts the portion of each scene pixel above the theme's
// threshold into dst.
func brightPass(dst, src *Framebuffer, theme Theme) {
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			r, g, b := src.At(x, y)

			var metric, threshold float64
			if theme == ThemeLight {
				// Saturation: a saturated pixel tints even when it is
				// not bright.
				maxC := max3(r, g, b)
				if maxC > 0 {
					metric = (maxC - min3(r, g, b)) / maxC
				}
				threshold = brightThresholdLight
			} else {
				metric = 0.299*r + 0.587*g + 0.114*b
				threshold = brightThresholdDark
			}

			t := 0.0
			if metric > threshold {
				t = (metric - threshold) / (1 - threshold)
			}
			dst.Set(x, y, r*t, g*t, b*t)
		}
	}
}

// blurAxis applies the kernel along one axis with the given tap step.
func blurAxis(dst, src *Framebuffer, dx, dy, step int) {
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var r, g, b float64
			for k := -4; k <= 4; k++ {
				sx := x + dx*k*step
				sy := y + dy*k*step
				if sx < 0 {
					sx = 0
				} else if sx >= src.W {
					sx = src.W - 1
				}
				if sy < 0 {
					sy = 0
				} else if sy >= src.H {
					sy = src.H - 1
				}
				w := blurKernel[k+4]
				pr, pg, pb := src.At(sx, sy)
				r += pr * w
				g += pg * w
				b += pb * w
			}
			dst.Set(x, y, r, g, b)
		}
	}
}

// bloom runs the full post chain over the targets: bright extraction,
// then three separable blur passes with doubling step, ping-ponging
// between BlurA and BlurFinal. Returns the buffer holding the final blur.
func bloom(c *TargetChain, theme Theme) *Framebuffer {
	brightPass(c.Bright, c.Scene, theme)

	cur := c.Bright
	for pass := 0; pass < blurPasses; pass++ {
		step := 1 << pass
		blurAxis(c.BlurA, cur, 1, 0, step)
		blurAxis(c.BlurFinal, c.BlurA, 0, 1, step)
		cur = c.BlurFinal
	}
	return cur
}

// composite blends the scene and the blurred glow onto the canvas as
// half-block cells. glow scales the blur contribution and rises with the
// current kick.
func composite(canvas *Canvas, scene, blur *Framebuffer, theme Theme, glow float64, accent colorful.Color) {
	w, h := canvas.Size()
	for cy := 0; cy < h; cy++ {
		upper := compositeRow(scene, blur, cy*2, theme, glow, accent)
		lower := compositeRow(scene, blur, cy*2+1, theme, glow, accent)
		for x := 0; x < w && x < scene.W; x++ {
			canvas.SetBlock(x, cy, upper[x], lower[x])
		}
	}
}

func compositeRow(scene, blur *Framebuffer, py int, theme Theme, glow float64, accent colorful.Color) []RGB {
	row := make([]RGB, scene.W)
	if py >= scene.H {
		return row
	}
	for x := 0; x < scene.W; x++ {
		sr, sg, sb := scene.At(x, py)
		br, bg, bb := blur.At(x, py)

		var r, g, b float64
		if theme == ThemeLight {
			// Tint toward the glow color by the blurred energy.
			lum := clamp01((0.299*br + 0.587*bg + 0.114*bb) * glow)
			r = sr + (accent.R-sr)*lum
			g = sg + (accent.G-sg)*lum
			b = sb + (accent.B-sb)*lum
		} else {
			r = sr + br*glow
			g = sg + bg*glow
			b = sb + bb*glow
		}
		row[x] = RGB{
			R: uint8(clamp01(r) * 255),
			G: uint8(clamp01(g) * 255),
			B: uint8(clamp01(b) * 255),
		}
	}
	return row
}

func max3(a, b, c float64) float64 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
