package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-player/lumen/internal/audiograph"
	"github.com/lumen-player/lumen/internal/player"
	"github.com/lumen-player/lumen/internal/settings"
	"github.com/lumen-player/lumen/internal/visual"
)

type stubPlayback struct {
	paused   bool
	resumes  int
	restarts int
	closed   bool
	vol      float64
	pos      time.Duration
	done     chan struct{}
}

func newStubPlayback() *stubPlayback {
	return &stubPlayback{vol: 0.8, done: make(chan struct{})}
}

func (s *stubPlayback) Position() time.Duration { return s.pos }
func (s *stubPlayback) Duration() time.Duration { return 3 * time.Minute }
func (s *stubPlayback) Volume() float64         { return s.vol }
func (s *stubPlayback) AdjustVolume(d float64)  { s.vol += d }
func (s *stubPlayback) TogglePause()            { s.paused = !s.paused }
func (s *stubPlayback) Paused() bool            { return s.paused }
func (s *stubPlayback) Resume() (bool, error)   { s.resumes++; return true, nil }
func (s *stubPlayback) Seek(time.Duration)      {}
func (s *stubPlayback) Restart()                { s.restarts++; s.paused = false }
func (s *stubPlayback) Done() <-chan struct{}   { return s.done }
func (s *stubPlayback) Close()                  { s.closed = true }

func newTestModel(p Playback) Model {
	graph := audiograph.NewManager()
	loop := visual.NewLoop(visual.Config{Width: 40, Height: 12})
	return New(p, graph, loop, settings.Default(), "", player.Metadata{Title: "test"})
}

func pressSpace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace} }

func TestUnpauseResumesAudioDevice(t *testing.T) {
	p := newStubPlayback()
	m := newTestModel(p)

	next, _ := m.Update(pressSpace())
	m = next.(Model)
	require.True(t, p.paused)
	assert.Equal(t, 0, p.resumes, "pausing must not touch the device")

	next, _ = m.Update(pressSpace())
	m = next.(Model)
	assert.False(t, p.paused)
	assert.Equal(t, 1, p.resumes, "unpausing wakes a possibly suspended device")
	assert.False(t, m.paused)
}

func TestPlaybackEndWithRepeatOneRestarts(t *testing.T) {
	p := newStubPlayback()
	m := newTestModel(p)
	m.repeatMode = RepeatOne

	next, cmd := m.Update(playbackEndedMsg{})
	m = next.(Model)
	assert.Equal(t, 1, p.restarts)
	assert.False(t, m.quitting)
	assert.NotNil(t, cmd, "a restart re-arms the done watcher")
}

func TestPlaybackEndWithoutRepeatQuits(t *testing.T) {
	p := newStubPlayback()
	m := newTestModel(p)

	next, cmd := m.Update(playbackEndedMsg{})
	m = next.(Model)
	assert.True(t, m.quitting)
	assert.True(t, p.closed)
	assert.NotNil(t, cmd)
	assert.Equal(t, "", m.View())
}

func TestTickPollsPlayerState(t *testing.T) {
	p := newStubPlayback()
	p.pos = 42 * time.Second
	p.vol = 0.3
	m := newTestModel(p)

	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	assert.Equal(t, 42*time.Second, m.elapsed)
	assert.Equal(t, 0.3, m.volume)
	assert.NotNil(t, cmd, "the tick loop re-arms itself")
}
