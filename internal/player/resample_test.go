package player

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDecoder struct {
	data []byte
	pos  int64
	rate int
	ch   int
}

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func (d *stubDecoder) Read(p []byte) (int, error) {
	if d.pos >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[d.pos:])
	d.pos += int64(n)
	return n, nil
}

func (d *stubDecoder) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = d.pos + offset
	case io.SeekEnd:
		next = int64(len(d.data)) + offset
	}
	if next < 0 {
		next = 0
	}
	if next > int64(len(d.data)) {
		next = int64(len(d.data))
	}
	d.pos = next
	return next, nil
}

func (d *stubDecoder) Length() int64     { return int64(len(d.data)) }
func (d *stubDecoder) SampleRate() int   { return d.rate }
func (d *stubDecoder) ChannelCount() int { return d.ch }

func readAll(t *testing.T, dec audioDecoder) []int16 {
	t.Helper()
	raw := make([]byte, 0)
	buf := make([]byte, 64)
	for {
		n, err := dec.Read(buf)
		raw = append(raw, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

func TestNormalizePassthroughForConformingStreams(t *testing.T) {
	src := &stubDecoder{data: pcm16(1, 2, 3, 4), rate: playbackSampleRate, ch: 2}
	out, err := normalizeStream(src)
	require.NoError(t, err)
	assert.Equal(t, audioDecoder(src), out, "48 kHz stereo needs no conversion")
}

func TestNormalizeUpmixesMono(t *testing.T) {
	src := &stubDecoder{data: pcm16(1000, -2000, 3000), rate: playbackSampleRate, ch: 1}
	out, err := normalizeStream(src)
	require.NoError(t, err)
	require.Equal(t, int64(3*playbackFrameSize), out.Length())

	samples := readAll(t, out)
	assert.Equal(t, []int16{1000, 1000, -2000, -2000, 3000, 3000}, samples)
}

func TestNormalizeDoublesHalfRate(t *testing.T) {
	src := &stubDecoder{
		data: pcm16(0, 0, 1000, 1000, 2000, 2000, 3000, 3000),
		rate: playbackSampleRate / 2,
		ch:   2,
	}
	out, err := normalizeStream(src)
	require.NoError(t, err)
	assert.Equal(t, int64(8*playbackFrameSize), out.Length())

	samples := readAll(t, out)
	require.Len(t, samples, 16)
	// Every other frame is the linear midpoint of its neighbors.
	assert.Equal(t, int16(0), samples[0])
	assert.Equal(t, int16(500), samples[2])
	assert.Equal(t, int16(1000), samples[4])
	assert.Equal(t, int16(1500), samples[6])
}

func TestNormalizeRejectsBadStreams(t *testing.T) {
	_, err := normalizeStream(&stubDecoder{rate: 0, ch: 2})
	assert.Error(t, err)

	_, err = normalizeStream(&stubDecoder{rate: 48000, ch: 6})
	assert.Error(t, err)
}

func TestRateConverterSeekRealigns(t *testing.T) {
	frames := make([]int16, 0, 200)
	for i := int16(0); i < 100; i++ {
		frames = append(frames, i, i)
	}
	src := &stubDecoder{data: pcm16(frames...), rate: playbackSampleRate / 2, ch: 2}
	out, err := normalizeStream(src)
	require.NoError(t, err)

	buf := make([]byte, 40*playbackFrameSize)
	_, err = io.ReadFull(out, buf)
	require.NoError(t, err)

	// Seek to output frame 20, which maps to source frame 10.
	pos, err := out.Seek(20*playbackFrameSize, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(20*playbackFrameSize), pos)

	_, err = io.ReadFull(out, buf[:playbackFrameSize])
	require.NoError(t, err)
	assert.Equal(t, int16(10), int16(binary.LittleEndian.Uint16(buf[:2])))
}
