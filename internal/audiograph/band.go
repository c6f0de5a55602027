package audiograph

import "math"

const (
	// NumBands is the fixed size of the equalizer's filter chain.
	NumBands = 16

	// MinGainDB and MaxGainDB bound every band gain; inputs outside the
	// range are clamped, never rejected.
	MinGainDB = -30.0
	MaxGainDB = 30.0

	// Gain changes ramp over ~10 ms to avoid audible clicks. The ramp
	// advances once per sub-block of rampBlockFrames frames.
	rampFrames      = graphSampleRate / 100
	rampBlockFrames = 64

	// Shared Q for all peaking bands: equal relative bandwidth per band
	// across the 16 ISO centers.
	bandQ = 1.6
)

// bandCenters holds the fixed ISO center frequencies in Hz, lowest first.
var bandCenters = [NumBands]float64{
	20, 31.5, 50, 80, 125, 200, 315, 500,
	800, 1250, 2000, 3150, 5000, 8000, 12500, 16000,
}

// BandCenters returns the fixed center frequency table.
func BandCenters() [NumBands]float64 { return bandCenters }

// peakingBand is one parametric peaking filter (RBJ biquad, direct form I)
// with independent state per stereo channel. Gain moves toward its target
// in small linear steps so a settings change never produces a step
// discontinuity in the output.
type peakingBand struct {
	freq float64

	gainDB   float64 // currently applied gain
	targetDB float64
	stepDB   float64 // per-sub-block increment while ramping

	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 [2]float64
	y1, y2 [2]float64
}

func newPeakingBand(freq float64) *peakingBand {
	b := &peakingBand{freq: freq}
	b.updateCoefficients()
	return b
}

// setGain begins a ramp toward dB. The value is clamped to
// [MinGainDB, MaxGainDB].
func (b *peakingBand) setGain(dB float64) {
	dB = clampGain(dB)
	b.targetDB = dB
	steps := float64(rampFrames / rampBlockFrames)
	if steps < 1 {
		steps = 1
	}
	b.stepDB = (dB - b.gainDB) / steps
}

func (b *peakingBand) updateCoefficients() {
	amp := math.Pow(10, b.gainDB/40)
	w0 := 2 * math.Pi * b.freq / graphSampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * bandQ)

	a0 := 1 + alpha/amp
	b.b0 = (1 + alpha*amp) / a0
	b.b1 = -2 * cosW0 / a0
	b.b2 = (1 - alpha*amp) / a0
	b.a1 = -2 * cosW0 / a0
	b.a2 = (1 - alpha/amp) / a0
}

// reset clears the delay lines. Called after a seek so stale state does not
// ring into the new position.
func (b *peakingBand) reset() {
	b.x1 = [2]float64{}
	b.x2 = [2]float64{}
	b.y1 = [2]float64{}
	b.y2 = [2]float64{}
}

// process filters interleaved stereo frames in place, advancing any gain
// ramp one sub-block at a time.
func (b *peakingBand) process(frames []float64) {
	for off := 0; off < len(frames); off += rampBlockFrames * 2 {
		if b.gainDB != b.targetDB {
			next := b.gainDB + b.stepDB
			if (b.stepDB > 0 && next >= b.targetDB) || (b.stepDB < 0 && next <= b.targetDB) {
				next = b.targetDB
			}
			b.gainDB = next
			b.updateCoefficients()
		}

		end := off + rampBlockFrames*2
		if end > len(frames) {
			end = len(frames)
		}
		for i := off; i < end; i += 2 {
			for ch := 0; ch < 2; ch++ {
				x0 := frames[i+ch]
				y0 := b.b0*x0 + b.b1*b.x1[ch] + b.b2*b.x2[ch] - b.a1*b.y1[ch] - b.a2*b.y2[ch]
				b.x2[ch], b.x1[ch] = b.x1[ch], x0
				b.y2[ch], b.y1[ch] = b.y1[ch], y0
				frames[i+ch] = y0
			}
		}
	}
}

func clampGain(dB float64) float64 {
	if dB < MinGainDB {
		return MinGainDB
	}
	if dB > MaxGainDB {
		return MaxGainDB
	}
	return dB
}
