package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// audioDecoder is implemented by all format-specific decoders: a seekable
// s16le PCM stream plus its stream parameters.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder detects format by file extension.
func newDecoder(f *os.File) (audioDecoder, error) {
	switch strings.ToLower(filepath.Ext(f.Name())) {
	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return nil, err
		}
		return &mp3Decoder{dec: dec, rate: dec.SampleRate()}, nil
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", filepath.Ext(f.Name()))
	}
}

// --- MP3: go-mp3 already emits 16-bit stereo PCM ---

type mp3Decoder struct {
	dec  *mp3.Decoder
	rate int
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Seek(offset int64, whence int) (int64, error) {
	return d.dec.Seek(offset, whence)
}
func (d *mp3Decoder) Length() int64     { return d.dec.Length() }
func (d *mp3Decoder) SampleRate() int   { return d.rate }
func (d *mp3Decoder) ChannelCount() int { return 2 }

// --- sampleSource-backed decoders ---

// sampleSource yields interleaved int16 samples; pcmStream adapts one to
// the byte-level audioDecoder contract, handling partial reads and
// byte/frame position mapping in one place.
type sampleSource interface {
	read(dst []int16) (int, error)
	seekFrame(frame int64) error
	sampleRate() int
	channels() int
	totalFrames() int64
}

type pcmStream struct {
	src  sampleSource
	pos  int64
	pend []byte
	tmp  []int16
}

func (s *pcmStream) Read(p []byte) (int, error) {
	if len(s.pend) > 0 {
		n := copy(p, s.pend)
		s.pend = s.pend[n:]
		s.pos += int64(n)
		return n, nil
	}

	want := len(p) / 2
	if want == 0 {
		want = 1
	}
	if cap(s.tmp) < want {
		s.tmp = make([]int16, want)
	}
	n, err := s.src.read(s.tmp[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s.tmp[i]))
	}
	written := copy(p, raw)
	if written < len(raw) {
		s.pend = raw[written:]
	}
	s.pos += int64(written)
	return written, err
}

func (s *pcmStream) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = s.pos + offset
	case io.SeekEnd:
		next = s.Length() + offset
	default:
		return s.pos, fmt.Errorf("invalid seek whence: %d", whence)
	}
	if next < 0 {
		next = 0
	}
	if max := s.Length(); next > max {
		next = max
	}
	frameSize := int64(s.src.channels()) * 2
	next -= next % frameSize

	if err := s.src.seekFrame(next / frameSize); err != nil {
		return s.pos, err
	}
	s.pend = nil
	s.pos = next
	return next, nil
}

func (s *pcmStream) Length() int64 {
	return s.src.totalFrames() * int64(s.src.channels()) * 2
}
func (s *pcmStream) SampleRate() int   { return s.src.sampleRate() }
func (s *pcmStream) ChannelCount() int { return s.src.channels() }

// --- WAV ---

type wavSource struct {
	file     *os.File
	pcmStart int64
	rate     int
	ch       int
	bitDepth int
	frames   int64
}

func newWAVDecoder(f *os.File) (audioDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}
	ch := int(dec.NumChans)
	src := &wavSource{
		file:     f,
		pcmStart: pcmStart,
		rate:     int(dec.SampleRate),
		ch:       ch,
		bitDepth: bitDepth,
		frames:   dec.PCMLen() / int64(ch*bitDepth/8),
	}
	return &pcmStream{src: src}, nil
}

func (w *wavSource) sampleRate() int    { return w.rate }
func (w *wavSource) channels() int      { return w.ch }
func (w *wavSource) totalFrames() int64 { return w.frames }

func (w *wavSource) seekFrame(frame int64) error {
	_, err := w.file.Seek(w.pcmStart+frame*int64(w.ch*w.bitDepth/8), io.SeekStart)
	return err
}

func (w *wavSource) read(dst []int16) (int, error) {
	bytesPer := w.bitDepth / 8
	raw := make([]byte, len(dst)*bytesPer)
	n, err := io.ReadFull(w.file, raw)
	samples := n / bytesPer
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	for i := 0; i < samples; i++ {
		off := i * bytesPer
		var v int
		switch w.bitDepth {
		case 8: // unsigned
			v = (int(raw[off]) - 128) << 8
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(raw[off:])))
		case 24:
			s := int32(raw[off]) | int32(raw[off+1])<<8 | int32(raw[off+2])<<16
			if s&0x800000 != 0 {
				s |= ^int32(0xFFFFFF)
			}
			v = int(s >> 8)
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(raw[off:])) >> 16)
		}
		dst[i] = clampS16(v)
	}
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return samples, err
}

// --- FLAC ---

type flacSource struct {
	stream *flac.Stream
	hold   []int16
}

func newFLACDecoder(f *os.File) (audioDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	return &pcmStream{src: &flacSource{stream: stream}}, nil
}

func (d *flacSource) sampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacSource) channels() int   { return int(d.stream.Info.NChannels) }
func (d *flacSource) totalFrames() int64 {
	return int64(d.stream.Info.NSamples)
}

func (d *flacSource) seekFrame(frame int64) error {
	d.hold = nil
	_, err := d.stream.Seek(uint64(frame))
	return err
}

func (d *flacSource) read(dst []int16) (int, error) {
	if len(d.hold) > 0 {
		n := copy(dst, d.hold)
		d.hold = d.hold[n:]
		return n, nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	ch := d.channels()
	shift := int(d.stream.Info.BitsPerSample) - 16
	nSamples := int(frame.Subframes[0].NSamples)
	out := make([]int16, nSamples*ch)
	for i := 0; i < nSamples; i++ {
		for c := 0; c < ch; c++ {
			v := int(frame.Subframes[c].Samples[i])
			if shift > 0 {
				v >>= shift
			} else if shift < 0 {
				v <<= -shift
			}
			out[i*ch+c] = clampS16(v)
		}
	}

	n := copy(dst, out)
	if n < len(out) {
		d.hold = out[n:]
	}
	return n, nil
}

// --- OGG Vorbis ---

type oggSource struct {
	reader *oggvorbis.Reader
	f32    []float32
}

func newOGGDecoder(f *os.File) (audioDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &pcmStream{src: &oggSource{reader: reader}}, nil
}

func (d *oggSource) sampleRate() int    { return d.reader.SampleRate() }
func (d *oggSource) channels() int      { return d.reader.Channels() }
func (d *oggSource) totalFrames() int64 { return d.reader.Length() }

func (d *oggSource) seekFrame(frame int64) error {
	return d.reader.SetPosition(frame)
}

func (d *oggSource) read(dst []int16) (int, error) {
	if cap(d.f32) < len(dst) {
		d.f32 = make([]float32, len(dst))
	}
	n, err := d.reader.Read(d.f32[:len(dst)])
	for i := 0; i < n; i++ {
		s := d.f32[i]
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		dst[i] = int16(s * 32767)
	}
	return n, err
}

func clampS16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
