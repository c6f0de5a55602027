package audiograph

// graphSampleRate matches the playback pipeline: every node assumes
// 48 kHz interleaved stereo.
const graphSampleRate = 48000

// node is one processing stage in the chain between source and sink.
// process mutates interleaved stereo frames in place; reset clears any
// internal state after a discontinuity (seek, topology swap).
type node interface {
	process(frames []float64)
	reset()
}

// downmixNode folds stereo to mono by writing the channel mean to both
// channels. Optional stage, spliced in when the mono toggle is on.
type downmixNode struct{}

func (downmixNode) process(frames []float64) {
	for i := 0; i+1 < len(frames); i += 2 {
		m := (frames[i] + frames[i+1]) * 0.5
		frames[i] = m
		frames[i+1] = m
	}
}

func (downmixNode) reset() {}

// gainNode is the output gain stage at the tail of the chain.
type gainNode struct {
	gain float64
}

func (g *gainNode) process(frames []float64) {
	if g.gain == 1 {
		return
	}
	for i := range frames {
		frames[i] *= g.gain
	}
}

func (g *gainNode) reset() {}

// filterChain wraps the sixteen peaking bands as a single chain stage so
// the manager can splice the whole equalizer in or out at once.
type filterChain struct {
	bands *[NumBands]*peakingBand
}

func (f filterChain) process(frames []float64) {
	for _, b := range f.bands {
		b.process(frames)
	}
}

func (f filterChain) reset() {
	for _, b := range f.bands {
		b.reset()
	}
}
