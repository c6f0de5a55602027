package audiograph

import (
	"encoding/binary"
	"io"
)

const frameBytes = 4 // 2 channels x 16-bit

// processReader splices the chain into an s16le stereo stream: every read
// pulls from the source, runs whole frames through the active chain in
// place, and carries partial-frame bytes over to the next read. Seeks
// pass through to the source and reset node state so filters do not ring
// across the discontinuity.
type processReader struct {
	m   *Manager
	src io.ReadSeeker

	carry    [frameBytes]byte
	carryLen int

	scratch []float64
}

func (r *processReader) Read(p []byte) (int, error) {
	if len(p) < frameBytes {
		return 0, io.ErrShortBuffer
	}

	off := copy(p, r.carry[:r.carryLen])
	n, err := r.src.Read(p[off:])
	total := off + n
	r.carryLen = 0

	usable := total - total%frameBytes
	if usable < total {
		r.carryLen = copy(r.carry[:], p[usable:total])
	}
	if usable == 0 {
		return 0, err
	}

	frames := usable / 2 // samples, both channels
	if cap(r.scratch) < frames {
		r.scratch = make([]float64, frames)
	}
	buf := r.scratch[:frames]
	for i := 0; i < frames; i++ {
		buf[i] = float64(int16(binary.LittleEndian.Uint16(p[i*2:]))) / 32768.0
	}

	r.m.processBlock(buf)

	for i, s := range buf {
		v := s * 32768
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(p[i*2:], uint16(int16(v)))
	}
	return usable, err
}

func (r *processReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.src.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	r.carryLen = 0
	r.m.resetNodes()
	return pos, nil
}
