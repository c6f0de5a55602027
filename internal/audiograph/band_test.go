package audiograph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandGainClamps(t *testing.T) {
	b := newPeakingBand(1000)

	b.setGain(45)
	assert.Equal(t, MaxGainDB, b.targetDB)

	b.setGain(-50)
	assert.Equal(t, MinGainDB, b.targetDB)

	b.setGain(12.5)
	assert.Equal(t, 12.5, b.targetDB)
}

func TestBandGainRampsInsteadOfJumping(t *testing.T) {
	b := newPeakingBand(1000)
	b.setGain(12)

	frames := make([]float64, rampBlockFrames*2)
	b.process(frames)
	require.Greater(t, b.gainDB, 0.0, "ramp should have started")
	require.Less(t, b.gainDB, 12.0, "gain must not jump to target in one block")

	// One full ramp window of frames settles the gain.
	for i := 0; i < rampFrames/rampBlockFrames+1; i++ {
		b.process(frames)
	}
	assert.Equal(t, 12.0, b.gainDB)
}

func TestBandBoostsItsCenterFrequency(t *testing.T) {
	const freq = 1000.0
	b := newPeakingBand(freq)
	b.setGain(12)

	// Settle the ramp before measuring.
	settle := make([]float64, rampFrames*4)
	b.process(settle)
	b.reset()

	n := graphSampleRate / 2
	in := make([]float64, n*2)
	for i := 0; i < n; i++ {
		s := math.Sin(2 * math.Pi * freq * float64(i) / graphSampleRate)
		in[i*2] = s * 0.25
		in[i*2+1] = s * 0.25
	}
	b.process(in)

	// Skip the transient, then compare RMS against the input level.
	var sum float64
	count := 0
	for i := n; i < n*2; i += 2 {
		sum += in[i] * in[i]
		count++
	}
	rms := math.Sqrt(sum / float64(count))
	gain := rms / (0.25 / math.Sqrt2)
	assert.Greater(t, gain, 2.0, "a +12 dB peaking band should roughly quadruple its center frequency")
}

func TestFilterChainResetClearsState(t *testing.T) {
	b := newPeakingBand(100)
	b.setGain(10)
	in := make([]float64, 512)
	for i := range in {
		in[i] = 0.5
	}
	b.process(in)
	require.NotZero(t, b.y1[0])

	b.reset()
	assert.Zero(t, b.y1[0])
	assert.Zero(t, b.x2[1])
}
