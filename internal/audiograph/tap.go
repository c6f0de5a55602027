package audiograph

import (
	"math"
	"sync"
)

const (
	// FFTSize is the fixed analysis window. SnapshotBins magnitude bins
	// come out of each snapshot.
	FFTSize      = 1024
	SnapshotBins = FFTSize / 2

	// tapSmoothing blends successive magnitude frames, matching the slow
	// analyser decay the visuals are tuned against.
	tapSmoothing = 0.8

	tapBufferSize = FFTSize * 2
)

// AnalysisTap is a non-destructive read point in the chain. It copies a
// mono mix of everything flowing through it into a ring buffer and turns
// the most recent window into smoothed frequency magnitudes on demand.
//
// The tap sits in the audio read path, so writes happen on the decode
// goroutine while snapshots are pulled from the render tick; a mutex
// guards the ring.
type AnalysisTap struct {
	mu   sync.Mutex
	buf  []float64
	w    int
	fill int

	real []float64
	imag []float64
	freq []float64 // smoothed magnitudes, persists across snapshots
	hann []float64
}

func newAnalysisTap() *AnalysisTap {
	t := &AnalysisTap{
		buf:  make([]float64, tapBufferSize),
		real: make([]float64, FFTSize),
		imag: make([]float64, FFTSize),
		freq: make([]float64, SnapshotBins),
		hann: make([]float64, FFTSize),
	}
	for i := range t.hann {
		t.hann[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(FFTSize-1)))
	}
	return t
}

func (t *AnalysisTap) process(frames []float64) {
	t.mu.Lock()
	for i := 0; i+1 < len(frames); i += 2 {
		t.buf[t.w] = (frames[i] + frames[i+1]) * 0.5
		t.w = (t.w + 1) % len(t.buf)
	}
	t.fill += len(frames) / 2
	if t.fill > len(t.buf) {
		t.fill = len(t.buf)
	}
	t.mu.Unlock()
}

func (t *AnalysisTap) reset() {
	t.mu.Lock()
	t.w = 0
	t.fill = 0
	t.mu.Unlock()
}

// Snapshot writes the current smoothed magnitudes into dst and reports
// whether a full analysis window was available. dst must hold
// SnapshotBins values; on a short buffer or an unfed tap it returns false
// and leaves dst untouched.
func (t *AnalysisTap) Snapshot(dst []float64) bool {
	if len(dst) < SnapshotBins {
		return false
	}

	t.mu.Lock()
	if t.fill < FFTSize {
		t.mu.Unlock()
		return false
	}
	start := (t.w - FFTSize + len(t.buf)) % len(t.buf)
	for i := 0; i < FFTSize; i++ {
		t.real[i] = t.buf[(start+i)%len(t.buf)] * t.hann[i]
		t.imag[i] = 0
	}
	t.mu.Unlock()

	fft(t.real, t.imag)

	norm := 2.0 / float64(FFTSize)
	for i := 0; i < SnapshotBins; i++ {
		mag := math.Sqrt(t.real[i]*t.real[i]+t.imag[i]*t.imag[i]) * norm
		t.freq[i] = t.freq[i]*tapSmoothing + mag*(1-tapSmoothing)
	}
	copy(dst, t.freq[:SnapshotBins])
	return true
}

// Waveform writes the n most recent mono samples into dst in
// chronological order and reports how many were copied.
func (t *AnalysisTap) Waveform(dst []float64) int {
	n := len(dst)
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > t.fill {
		n = t.fill
	}
	if n == 0 {
		return 0
	}
	start := (t.w - n + len(t.buf)) % len(t.buf)
	for i := 0; i < n; i++ {
		dst[i] = t.buf[(start+i)%len(t.buf)]
	}
	return n
}
