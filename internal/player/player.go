// Package player drives local audio playback: format detection and
// decoding, normalization to the fixed 48 kHz stereo pipeline, and the
// oto output sink, with the audio graph spliced into the read path
// between decoder and device.
package player

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"

	"github.com/lumen-player/lumen/internal/audiograph"
)

var log = logrus.WithField("component", "player")

// countingReader wraps the processed stream and tracks bytes read so
// Position works without asking the device.
type countingReader struct {
	reader io.ReadSeeker
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player manages playback of one local file through the audio graph.
type Player struct {
	file      *os.File
	decoder   audioDecoder
	stream    io.ReadSeeker // graph-processed view of the decoder
	counter   *countingReader
	graph     *audiograph.Manager
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	duration  time.Duration
	volume    float64
	paused    bool
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// otoBackend adapts the oto context to the graph's suspendable backend.
type otoBackend struct {
	ctx *oto.Context
}

func (b otoBackend) Suspend() error { return b.ctx.Suspend() }
func (b otoBackend) Resume() error  { return b.ctx.Resume() }

// New creates a Player for the given audio file, attaching the graph
// manager between decoder and device. When the audio device cannot be
// initialized the graph is marked unavailable (no visuals, no EQ) and
// the error is returned.
func New(path string, graph *audiograph.Manager) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	normalized, err := normalizeStream(dec)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto()
	if err != nil {
		graph.MarkUnavailable()
		f.Close()
		return nil, err
	}
	graph.SetBackend(otoBackend{ctx: ctx})

	stream := graph.Attach(normalized)
	cr := &countingReader{reader: stream}

	dur := time.Duration(float64(normalized.Length()) / float64(bytesPerSec) * float64(time.Second))

	p := &Player{
		file:     f,
		decoder:  normalized,
		stream:   stream,
		counter:  cr,
		graph:    graph,
		otoCtx:   ctx,
		duration: dur,
		volume:   0.8,
		done:     make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(cr)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor()

	return p, nil
}

// Graph returns the attached graph manager.
func (p *Player) Graph() *audiograph.Manager { return p.graph }

func (p *Player) monitor() {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		pos := p.counter.Pos()
		total := p.decoder.Length()
		paused := p.paused
		p.mu.Unlock()

		if !paused && pos >= total {
			close(p.done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks to the beginning and resumes playback, resetting the
// done channel.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stream.Seek(0, io.SeekStart)
	p.counter.SetPos(0)

	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)

	p.done = make(chan struct{})
	p.paused = false
	p.otoPlayer.Play()

	go p.monitor()
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Resume wakes a suspended audio device and re-asserts the graph
// topology, reporting whether the device is running.
func (p *Player) Resume() (bool, error) {
	return p.graph.Resume()
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	pos := p.counter.Pos()
	secs := float64(pos) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by the given delta from the current position.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentPos := p.counter.Pos()
	newPos := currentPos + int64(delta.Seconds()*float64(bytesPerSec))

	if newPos < 0 {
		newPos = 0
	}
	if total := p.decoder.Length(); newPos > total {
		newPos = total
	}
	newPos -= newPos % playbackFrameSize

	if _, err := p.stream.Seek(newPos, io.SeekStart); err != nil {
		log.WithError(err).Debug("seek failed")
		return
	}
	p.counter.SetPos(newPos)

	// Recreate the device player to flush its buffer.
	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume, clamped to 0.0 - 1.0.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Close releases all resources.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.file.Close()
}
