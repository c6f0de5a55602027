package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	playbackSampleRate = 48000
	playbackChannels   = 2
	playbackFrameSize  = playbackChannels * 2
	bytesPerSec        = playbackSampleRate * playbackFrameSize
)

// normalizeStream presents any decoder as a fixed 48 kHz stereo s16le
// stream: mono sources are duplicated to both channels and other sample
// rates are linearly interpolated. Already-conforming sources pass
// through untouched.
func normalizeStream(src audioDecoder) (audioDecoder, error) {
	rate := src.SampleRate()
	ch := src.ChannelCount()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	if ch < 1 || ch > playbackChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", ch)
	}
	if rate == playbackSampleRate && ch == playbackChannels {
		return src, nil
	}

	srcFrames := src.Length() / int64(ch*2)
	outFrames := srcFrames * playbackSampleRate / int64(rate)
	return &rateConverter{
		src:       src,
		srcRate:   rate,
		srcCh:     ch,
		srcFrames: srcFrames,
		outFrames: outFrames,
		baseFrame: -1,
	}, nil
}

// rateConverter pulls source frames through a small sliding window and
// emits interpolated output frames. The output position is tracked as a
// rational srcNum/outRate so long streams accumulate no drift.
type rateConverter struct {
	src       audioDecoder
	srcRate   int
	srcCh     int
	srcFrames int64
	outFrames int64

	outFrame int64 // next output frame index
	srcNum   int64 // outFrame * srcRate, i.e. source position numerator
	pos      int64 // output byte position

	window    []int16 // decoded source samples, interleaved
	baseFrame int64   // source frame index of window[0]; -1 = empty
	rd        []byte

	pend []byte
}

func (c *rateConverter) Length() int64     { return c.outFrames * playbackFrameSize }
func (c *rateConverter) SampleRate() int   { return playbackSampleRate }
func (c *rateConverter) ChannelCount() int { return playbackChannels }

func (c *rateConverter) Read(p []byte) (int, error) {
	if len(c.pend) > 0 {
		n := copy(p, c.pend)
		c.pend = c.pend[n:]
		c.pos += int64(n)
		return n, nil
	}
	if c.outFrame >= c.outFrames {
		return 0, io.EOF
	}

	frames := len(p) / playbackFrameSize
	if frames == 0 {
		frames = 1
	}
	if rem := c.outFrames - c.outFrame; int64(frames) > rem {
		frames = int(rem)
	}

	raw := make([]byte, frames*playbackFrameSize)
	written := 0
	for written < frames {
		srcFrame := c.srcNum / playbackSampleRate
		frac := c.srcNum % playbackSampleRate

		l0, r0, err := c.frameAt(srcFrame)
		if err != nil {
			break
		}
		l1, r1 := l0, r0
		if srcFrame+1 < c.srcFrames {
			if l, r, err2 := c.frameAt(srcFrame + 1); err2 == nil {
				l1, r1 = l, r
			}
		}

		off := written * playbackFrameSize
		binary.LittleEndian.PutUint16(raw[off:], uint16(lerpS16(l0, l1, frac, playbackSampleRate)))
		binary.LittleEndian.PutUint16(raw[off+2:], uint16(lerpS16(r0, r1, frac, playbackSampleRate)))

		written++
		c.outFrame++
		c.srcNum += int64(c.srcRate)
	}

	if written == 0 {
		return 0, io.EOF
	}
	out := raw[:written*playbackFrameSize]
	n := copy(p, out)
	if n < len(out) {
		c.pend = append(c.pend[:0], out[n:]...)
	}
	c.pos += int64(n)
	return n, nil
}

func (c *rateConverter) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = c.pos + offset
	case io.SeekEnd:
		next = c.Length() + offset
	default:
		return c.pos, fmt.Errorf("invalid seek whence: %d", whence)
	}
	if next < 0 {
		next = 0
	}
	if max := c.Length(); next > max {
		next = max
	}
	next -= next % playbackFrameSize

	outFrame := next / playbackFrameSize
	srcFrame := outFrame * int64(c.srcRate) / playbackSampleRate
	if _, err := c.src.Seek(srcFrame*int64(c.srcCh)*2, io.SeekStart); err != nil {
		return c.pos, err
	}

	c.pos = next
	c.outFrame = outFrame
	c.srcNum = outFrame * int64(c.srcRate)
	c.window = c.window[:0]
	c.baseFrame = srcFrame
	c.pend = nil
	return next, nil
}

// frameAt returns the source frame as a stereo pair, sliding the window
// forward as needed. Mono sources fill both channels.
func (c *rateConverter) frameAt(frame int64) (int16, int16, error) {
	if frame >= c.srcFrames {
		return 0, 0, io.EOF
	}
	if c.baseFrame < 0 {
		c.baseFrame = frame
	}

	// Drop frames the interpolator has moved past.
	if drop := frame - 1 - c.baseFrame; drop > 0 {
		avail := int64(len(c.window)) / int64(c.srcCh)
		if drop >= avail {
			c.window = c.window[:0]
			c.baseFrame += avail
		} else {
			keep := copy(c.window, c.window[drop*int64(c.srcCh):])
			c.window = c.window[:keep]
			c.baseFrame += drop
		}
	}

	for frame >= c.baseFrame+int64(len(c.window))/int64(c.srcCh) {
		if err := c.fill(); err != nil {
			return 0, 0, err
		}
	}

	off := int(frame-c.baseFrame) * c.srcCh
	if c.srcCh == 1 {
		return c.window[off], c.window[off], nil
	}
	return c.window[off], c.window[off+1], nil
}

func (c *rateConverter) fill() error {
	const chunk = 2048
	need := chunk * c.srcCh * 2
	if cap(c.rd) < need {
		c.rd = make([]byte, need)
	}
	n, err := c.src.Read(c.rd[:need])
	samples := n / 2
	if samples == 0 {
		if err == nil {
			err = io.EOF
		}
		return err
	}
	samples -= samples % c.srcCh
	for i := 0; i < samples; i++ {
		c.window = append(c.window, int16(binary.LittleEndian.Uint16(c.rd[i*2:])))
	}
	return nil
}

func lerpS16(a, b int16, num, den int64) int16 {
	if num == 0 || a == b {
		return a
	}
	diff := int64(b) - int64(a)
	return int16(int64(a) + (diff*num+den/2)/den)
}
