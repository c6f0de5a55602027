package audiograph

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// s16Source builds a seekable s16le stereo stream from sample values.
func s16Source(samples ...int16) io.ReadSeeker {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return bytes.NewReader(buf)
}

func constantSource(value int16, frames int) io.ReadSeeker {
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = value
	}
	return s16Source(samples...)
}

func TestAttachIsIdempotent(t *testing.T) {
	m := NewManager()
	src := constantSource(0, 16)

	first := m.Attach(src)
	second := m.Attach(constantSource(0, 16))
	assert.Same(t, first, second, "second attach while attached must be a no-op")
}

func TestAttachUnavailableBackendIsPassThrough(t *testing.T) {
	m := NewManager()
	m.MarkUnavailable()

	src := constantSource(0, 16)
	out := m.Attach(src)
	assert.Equal(t, src, out)
	assert.Nil(t, m.Tap(), "constrained backend reports no tap")
}

func TestGainClampAndInvalidIndex(t *testing.T) {
	m := NewManager()

	m.SetBandGain(0, 45)
	assert.Equal(t, 30.0, m.BandGain(0))

	m.SetBandGain(1, -50)
	assert.Equal(t, -30.0, m.BandGain(1))

	// Out-of-range indices are ignored, not errors.
	m.SetBandGain(-1, 10)
	m.SetBandGain(NumBands, 10)
	assert.Equal(t, 0.0, m.BandGain(NumBands))
}

func TestEQPresetRoundTrip(t *testing.T) {
	m := NewManager()

	require.True(t, m.ApplyPreset("flat"))
	for _, g := range m.Gains() {
		assert.Equal(t, 0.0, g)
	}
	assert.Equal(t, "flat", m.PresetName())

	require.True(t, m.ApplyPreset("bass_boost"))
	want, ok := LookupEQPreset("bass_boost")
	require.True(t, ok)
	assert.Equal(t, want.Gains, m.Gains())

	assert.False(t, m.ApplyPreset("no_such_preset"))
	assert.Equal(t, "bass_boost", m.PresetName(), "unknown preset leaves gains untouched")
}

func TestToggleSequenceNeverLeavesPartialTopology(t *testing.T) {
	m := NewManager()
	m.Attach(constantSource(0, 1024))

	check := func() {
		t.Helper()
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.bypass {
			assert.Nil(t, m.chain, "bypass and chain must be mutually exclusive")
		} else {
			assert.NotNil(t, m.chain)
		}
	}

	m.SetEQEnabled(true)
	check()

	// Simulated connect failure on the next rebuild drops to bypass.
	m.buildHook = func([]node) error { return errors.New("connect refused") }
	m.SetMono(true)
	check()
	assert.True(t, m.Bypassed())

	m.buildHook = nil
	m.SetEQEnabled(false)
	check()
	assert.False(t, m.Bypassed(), "recovered rebuild leaves the full path active")
}

func TestGraphChangeObserverFiresOncePerToggle(t *testing.T) {
	m := NewManager()
	m.Attach(constantSource(0, 16))

	calls := 0
	unregister := m.OnGraphChange(func() { calls++ })

	m.SetMono(true)
	assert.Equal(t, 1, calls)

	m.SetMono(false)
	assert.Equal(t, 2, calls)

	unregister()
	m.SetEQEnabled(true)
	assert.Equal(t, 2, calls, "unregistered observer must not fire")
}

func TestObserverPanicIsIsolated(t *testing.T) {
	m := NewManager()
	m.Attach(constantSource(0, 16))

	var after bool
	m.OnGraphChange(func() { panic("boom") })
	m.OnGraphChange(func() { after = true })

	assert.NotPanics(t, func() { m.SetEQEnabled(true) })
	assert.True(t, after, "a panicking observer must not abort the loop")
}

func TestProcessReaderPreservesAudioWithoutStages(t *testing.T) {
	m := NewManager()
	r := m.Attach(s16Source(1000, -1000, 2000, -2000))

	out := make([]byte, 16)
	n, _ := io.ReadFull(r, out[:8])
	require.Equal(t, 8, n)

	assert.Equal(t, int16(1000), int16(binary.LittleEndian.Uint16(out[0:])))
	assert.Equal(t, int16(-2000), int16(binary.LittleEndian.Uint16(out[6:])))
}

func TestMonoDownmixFoldsChannels(t *testing.T) {
	m := NewManager()
	r := m.Attach(s16Source(8000, -8000, 4000, 0))
	m.SetMono(true)

	out := make([]byte, 8)
	_, err := io.ReadFull(r, out)
	require.NoError(t, err)

	left := int16(binary.LittleEndian.Uint16(out[0:]))
	right := int16(binary.LittleEndian.Uint16(out[2:]))
	assert.Equal(t, left, right, "downmix writes the mean to both channels")
	assert.InDelta(t, 0, int(left), 1)
}

func TestTapSnapshotAvailability(t *testing.T) {
	m := NewManager()
	r := m.Attach(constantSource(8000, FFTSize*2))

	tap := m.Tap()
	require.NotNil(t, tap)

	dst := make([]float64, SnapshotBins)
	assert.False(t, tap.Snapshot(dst), "tap has no data before any read")

	buf := make([]byte, FFTSize*2*frameBytes)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.True(t, tap.Snapshot(dst))

	// DC input concentrates energy in the lowest bins.
	assert.Greater(t, dst[0], dst[SnapshotBins-1])
}

func TestSeekResetsNodeState(t *testing.T) {
	m := NewManager()
	r := m.Attach(constantSource(8000, FFTSize*4))
	m.SetEQEnabled(true)

	buf := make([]byte, FFTSize*frameBytes)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)

	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)

	dst := make([]float64, SnapshotBins)
	assert.False(t, m.Tap().Snapshot(dst), "seek clears the tap's window")
}

func TestParameterChangesDuringPlaybackAreSerialized(t *testing.T) {
	m := NewManager()
	r := m.Attach(constantSource(1000, 8192))
	m.SetEQEnabled(true)

	// Hammer the settings path while the read path pulls frames; the race
	// detector flags any unserialized access to band ramps or the output
	// gain.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			m.SetBandGain(i%NumBands, float64(i%60)-30)
			m.SetOutputGain(0.5 + float64(i%10)/20)
		}
	}()

	buf := make([]byte, 4096)
	for {
		if _, err := r.Read(buf); err != nil {
			break
		}
	}
	<-done

	assert.False(t, m.Bypassed())
}

type stubBackend struct {
	resumed int
	err     error
}

func (b *stubBackend) Suspend() error { return nil }
func (b *stubBackend) Resume() error {
	b.resumed++
	return b.err
}

func TestResumeReassertsTopology(t *testing.T) {
	m := NewManager()
	m.Attach(constantSource(0, 16))

	b := &stubBackend{}
	m.SetBackend(b)

	calls := 0
	m.OnGraphChange(func() { calls++ })

	running, err := m.Resume()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, 1, b.resumed)
	assert.Equal(t, 1, calls, "resume re-asserts topology through the observers")

	b.err = errors.New("device lost")
	running, err = m.Resume()
	assert.Error(t, err)
	assert.False(t, running)
}

func TestResumeWithoutBackend(t *testing.T) {
	m := NewManager()
	running, err := m.Resume()
	assert.NoError(t, err)
	assert.False(t, running)
}
