package visual

import (
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlurKernelIsNormalized(t *testing.T) {
	sum := 0.0
	for _, w := range blurKernel {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestBrightPassDarkThemeUsesBrightness(t *testing.T) {
	src := newFramebuffer(2, 1)
	dst := newFramebuffer(2, 1)
	src.Set(0, 0, 0.9, 0.9, 0.9) // bright
	src.Set(1, 0, 0.2, 0.2, 0.2) // dim

	brightPass(dst, src, ThemeDark)

	r, _, _ := dst.At(0, 0)
	assert.Greater(t, r, 0.0, "bright pixel survives the bright pass")
	r, g, b := dst.At(1, 0)
	assert.Zero(t, r+g+b, "dim pixel is rejected")
}

func TestBrightPassLightThemeUsesSaturation(t *testing.T) {
	src := newFramebuffer(2, 1)
	dst := newFramebuffer(2, 1)
	src.Set(0, 0, 0.4, 0.05, 0.05) // saturated but not bright
	src.Set(1, 0, 0.5, 0.5, 0.5)   // bright but gray

	brightPass(dst, src, ThemeLight)
	r, _, _ := dst.At(0, 0)
	assert.Greater(t, r, 0.0, "saturated pixel tints in light theme")
	r, g, b := dst.At(1, 0)
	assert.Zero(t, r+g+b, "gray carries no saturation")

	// The same saturated-but-dim pixel would not glow in the dark theme.
	dst.Clear()
	brightPass(dst, src, ThemeDark)
	r, _, _ = dst.At(0, 0)
	assert.Zero(t, r)
}

func TestBloomSpreadsBrightPoint(t *testing.T) {
	chain := newTargetChain(33, 33)
	chain.Scene.Set(16, 16, 3, 3, 3)

	blur := bloom(chain, ThemeDark)
	require.Same(t, chain.BlurFinal, blur, "final blur lands in the last target")

	center, _, _ := blur.At(16, 16)
	near, _, _ := blur.At(16, 12)
	far, _, _ := blur.At(16, 0)
	assert.Greater(t, center, near, "energy falls off from the center")
	assert.Greater(t, near, far)
	assert.Greater(t, far, 0.0, "three doubling-step passes reach well beyond 9 texels")
}

func TestTargetChainResizeIsAllOrNothing(t *testing.T) {
	chain := newTargetChain(10, 10)
	chain.Resize(25, 50)

	for _, fb := range []*Framebuffer{chain.Scene, chain.Bright, chain.BlurA, chain.BlurFinal} {
		require.Equal(t, 25, fb.W)
		require.Equal(t, 50, fb.H)
		assert.Len(t, fb.Pix, 25*50*3)
	}

	// No-op resize keeps the existing buffers.
	scene := chain.Scene
	chain.Resize(25, 50)
	assert.Same(t, scene, chain.Scene)
}

func TestCompositeGlowScalesWithKick(t *testing.T) {
	scene := newFramebuffer(2, 2)
	blur := newFramebuffer(2, 2)
	scene.Set(0, 0, 0.1, 0.1, 0.1)
	blur.Set(0, 0, 0.4, 0.4, 0.4)
	accent := colorful.Color{R: 1, G: 0, B: 1}

	low := newCanvas(2, 1)
	composite(low, scene, blur, ThemeDark, 0.2, accent)
	high := newCanvas(2, 1)
	composite(high, scene, blur, ThemeDark, 1.0, accent)

	assert.Greater(t, high.cells[0].fg.R, low.cells[0].fg.R,
		"a stronger kick brightens the additive glow")
	assert.Equal(t, '▀', high.cells[0].r)
}
