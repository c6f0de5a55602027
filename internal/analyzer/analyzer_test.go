package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accent = "#7C5CFF"

func snapshot(bass float64) []float64 {
	freq := make([]float64, 512)
	for i := 0; i < 4; i++ {
		freq[i] = bass
	}
	return freq
}

var quiet = snapshot(0)

func TestKickDebounce(t *testing.T) {
	spike := snapshot(0.4)

	// Two spikes 10 ms apart: exactly one kick rise.
	a := New()
	a.Tick(spike, 1, accent, 0)
	first := a.Stats().LastKickMs
	require.Equal(t, int64(0), first, "first spike fires")

	a.Tick(quiet, 1, accent, 5)
	a.Tick(spike, 1, accent, 10)
	assert.Equal(t, first, a.Stats().LastKickMs, "10 ms spike is debounced")

	// Spikes 60 ms apart: two rises.
	a = New()
	a.Tick(spike, 1, accent, 0)
	a.Tick(quiet, 1, accent, 20)
	a.Tick(quiet, 1, accent, 40)
	a.Tick(spike, 1, accent, 60)
	assert.Equal(t, int64(60), a.Stats().LastKickMs)
}

func TestKickRequiresRisingEdge(t *testing.T) {
	a := New()
	level := snapshot(0.4)

	a.Tick(level, 1, accent, 0)
	require.Equal(t, 1.0, a.Stats().Kick)

	// A constant plateau well past the debounce window must not re-fire.
	a.Tick(level, 1, accent, 100)
	assert.Equal(t, int64(0), a.Stats().LastKickMs)
}

func TestSustainDecaysSmoothlyToZero(t *testing.T) {
	a := New()
	loud := snapshot(0.5)

	// Two seconds of loud input at ~30 fps.
	now := int64(0)
	for i := 0; i < 60; i++ {
		a.Tick(loud, 1, accent, now)
		now += 33
	}
	require.Greater(t, a.Stats().Kick, 0.3, "sustain branch keeps the kick alive")

	// Silence: the kick must decay toward zero without discontinuities.
	prev := a.Stats().Kick
	for i := 0; i < 120; i++ {
		st := a.Tick(quiet, 1, accent, now)
		now += 33
		assert.LessOrEqual(t, st.Kick, prev, "kick never rises during silence")
		assert.GreaterOrEqual(t, st.Kick, prev*idleDecay-1e-12, "decay is multiplicative, never a jump")
		prev = st.Kick
	}
	assert.Less(t, prev, 0.01)
}

func TestVolumeNormalization(t *testing.T) {
	spike := snapshot(0.2)

	loudVol := New()
	loudVol.Tick(spike, 1.0, accent, 0)

	quietVol := New()
	quietVol.Tick(spike, 0.25, accent, 0)

	// The same signal at a lower output volume reads as a stronger
	// normalized intensity.
	assert.Greater(t, quietVol.prevIntensity, loudVol.prevIntensity)
}

func TestSmartSensitivityCurve(t *testing.T) {
	a := New()
	a.SetSmart(true)

	a.stats.EnergyAverage = 0.05
	assert.Equal(t, 0.3, a.sensitivity())

	a.stats.EnergyAverage = 0.3
	assert.InDelta(t, 0.6, a.sensitivity(), 1e-9)

	a.stats.EnergyAverage = 0.8
	assert.Equal(t, 0.9, a.sensitivity())

	a.SetSensitivity(1.4)
	assert.Equal(t, 1.0, a.sensitivity(), "fixed sensitivity clamps to [0,1] and disables smart mode")
}

func TestAccentColorParsedOnlyOnChange(t *testing.T) {
	a := New()
	a.Tick(quiet, 1, "#FF0000", 0)
	a.Tick(quiet, 1, "#FF0000", 33)
	a.Tick(quiet, 1, "#FF0000", 66)
	assert.Equal(t, 1, a.parseCount)

	a.Tick(quiet, 1, "#00FF00", 99)
	assert.Equal(t, 2, a.parseCount)
	assert.InDelta(t, 1.0, a.Stats().Primary.G, 1e-9)

	// A malformed accent keeps the previous color.
	a.Tick(quiet, 1, "not-a-color", 132)
	assert.Equal(t, 2, a.parseCount)
	assert.InDelta(t, 1.0, a.Stats().Primary.G, 1e-9)
}

func TestEnergyAverageTracksSlowly(t *testing.T) {
	a := New()
	loud := snapshot(0.5)

	a.Tick(loud, 1, accent, 0)
	afterOne := a.Stats().EnergyAverage
	assert.Greater(t, afterOne, 0.0)
	assert.Less(t, afterOne, a.prevIntensity*0.02, "baseline moves at 1% per tick")
}
