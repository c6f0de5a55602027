package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/lumen-player/lumen/internal/audiograph"
	"github.com/lumen-player/lumen/internal/player"
	"github.com/lumen-player/lumen/internal/settings"
	"github.com/lumen-player/lumen/internal/util"
	"github.com/lumen-player/lumen/internal/visual"
)

var log = logrus.WithField("component", "ui")

// headerLines is the fixed vertical space above and below the
// visualizer pane: header, title, subtitle, progress, status, help and
// their separators.
const headerLines = 11

// Playback is the player surface the model drives.
type Playback interface {
	Position() time.Duration
	Duration() time.Duration
	Volume() float64
	AdjustVolume(delta float64)
	TogglePause()
	Paused() bool
	Resume() (bool, error)
	Seek(delta time.Duration)
	Restart()
	Done() <-chan struct{}
	Close()
}

// Model is the Bubbletea model for the lumen TUI.
type Model struct {
	player   Playback
	graph    *audiograph.Manager
	loop     *visual.Loop
	sett     *settings.Settings
	settPath string
	metadata player.Metadata
	keys     keyMap

	elapsed    time.Duration
	duration   time.Duration
	volume     float64
	paused     bool
	width      int
	height     int
	quitting   bool
	repeatMode RepeatMode
	showPanel  bool
	sens       float64
	vizFrame   string
}

// New creates a new Model wired to the player, graph, and render loop.
func New(p Playback, graph *audiograph.Manager, loop *visual.Loop, sett *settings.Settings, settPath string, meta player.Metadata) Model {
	return Model{
		player:   p,
		graph:    graph,
		loop:     loop,
		sett:     sett,
		settPath: settPath,
		metadata: meta,
		keys:     defaultKeyMap(),
		duration: p.Duration(),
		volume:   p.Volume(),
		sens:     sett.Visualizer.Sensitivity,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), checkDone(m.player), tea.SetWindowTitle(windowTitle(m.metadata.Title, false)))
}

func checkDone(p Playback) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.elapsed = m.player.Position()
		m.volume = m.player.Volume()
		m.paused = m.player.Paused()
		m.vizFrame = m.loop.Tick(time.Now().UnixMilli())
		return m, tickCmd()

	case playbackEndedMsg:
		if m.repeatMode == RepeatOne {
			m.player.Restart()
			m.elapsed = 0
			return m, checkDone(m.player)
		}
		m.elapsed = m.duration
		return m.quit()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLoop()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Pause):
		if m.player.Paused() {
			// The device may have suspended while paused; wake it and
			// re-assert the graph before audio flows again.
			if _, err := m.player.Resume(); err != nil {
				log.WithError(err).Debug("device resume failed")
			}
		}
		m.player.TogglePause()
		m.paused = m.player.Paused()
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))

	case key.Matches(msg, m.keys.SeekBack):
		m.player.Seek(-5 * time.Second)

	case key.Matches(msg, m.keys.SeekFwd):
		m.player.Seek(5 * time.Second)

	case key.Matches(msg, m.keys.VolUp):
		m.player.AdjustVolume(0.05)
		m.volume = m.player.Volume()

	case key.Matches(msg, m.keys.VolDown):
		m.player.AdjustVolume(-0.05)
		m.volume = m.player.Volume()

	case key.Matches(msg, m.keys.Repeat):
		m.repeatMode = m.repeatMode.Next()

	case key.Matches(msg, m.keys.VizToggle):
		if m.loop.Running() {
			m.loop.Stop()
			m.vizFrame = ""
		} else {
			m.loop.Start()
		}

	case key.Matches(msg, m.keys.VizPreset):
		m.loop.NextPreset()

	case key.Matches(msg, m.keys.EQToggle):
		m.graph.SetEQEnabled(!m.graph.EQEnabled())

	case key.Matches(msg, m.keys.EQPreset):
		m.graph.ApplyPreset(nextEQPreset(m.graph.PresetName()))

	case key.Matches(msg, m.keys.Mono):
		m.graph.SetMono(!m.graph.Mono())

	case key.Matches(msg, m.keys.SensDown):
		m.sens = clampUnit(m.sens - 0.1)
		m.loop.Analyzer().SetSensitivity(m.sens)

	case key.Matches(msg, m.keys.SensUp):
		m.sens = clampUnit(m.sens + 0.1)
		m.loop.Analyzer().SetSensitivity(m.sens)

	case key.Matches(msg, m.keys.SmartSens):
		m.loop.Analyzer().SetSmart(true)

	case key.Matches(msg, m.keys.Panel):
		m.showPanel = !m.showPanel
		m.resizeLoop()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.saveSettings()
	m.loop.Stop()
	m.player.Close()
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

// saveSettings snapshots the live state back into the settings file so
// the next run starts where this one left off.
func (m Model) saveSettings() {
	m.sett.Volume = m.player.Volume()
	m.sett.EQ.Enabled = m.graph.EQEnabled()
	m.sett.EQ.Preset = m.graph.PresetName()
	m.sett.EQ.Mono = m.graph.Mono()
	gains := m.graph.Gains()
	m.sett.EQ.Gains = gains[:]
	m.sett.Visualizer.Enabled = m.loop.Running()
	m.sett.Visualizer.Preset = m.loop.ActivePreset()
	st := m.loop.Analyzer().Stats()
	m.sett.Visualizer.Sensitivity = m.sens
	m.sett.Visualizer.Smart = st.Smart

	if m.settPath == "" {
		return
	}
	if err := settings.Save(m.settPath, m.sett); err != nil {
		log.WithError(err).Warn("could not persist settings")
	}
}

// resizeLoop gives the visualizer everything below the fixed chrome.
func (m Model) resizeLoop() {
	if m.width == 0 || m.height == 0 {
		return
	}
	reserved := headerLines
	if m.showPanel {
		reserved += panelHeight
	}
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.loop.Resize(m.width-4, h)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	header := headerStyle.Render("lumen")

	title := titleStyle.Render(m.metadata.Title)

	subtitle := ""
	if m.metadata.Artist != "" && m.metadata.Album != "" {
		subtitle = artistStyle.Render(fmt.Sprintf("%s - %s", m.metadata.Artist, m.metadata.Album))
	} else if m.metadata.Artist != "" {
		subtitle = artistStyle.Render(m.metadata.Artist)
	} else if m.metadata.Album != "" {
		subtitle = artistStyle.Render(m.metadata.Album)
	}

	elapsedStr := timeStyle.Render(util.FormatDuration(m.elapsed))
	durationStr := timeStyle.Render(util.FormatDuration(m.duration))
	barWidth := w - len(util.FormatDuration(m.elapsed)) - len(util.FormatDuration(m.duration)) - 6
	if barWidth < 10 {
		barWidth = 10
	}
	bar := renderProgressBar(m.elapsed.Seconds(), m.duration.Seconds(), barWidth)
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, bar, durationStr)

	statusIcon := "▶"
	statusText := "playing"
	if m.paused {
		statusIcon = "❚❚"
		statusText = "paused"
	}
	leftText := fmt.Sprintf("%s  %s", statusIcon, statusText)
	if icon := m.repeatMode.Icon(); icon != "" {
		leftText += "  " + icon
	}
	leftText += "  " + m.audioFlags()
	volStr := renderVolumePercent(m.volume)
	statusLeft := statusStyle.Render(leftText)
	statusRight := statusStyle.Render(volStr)
	gap := w - len(leftText) - len(volStr) - 4
	if gap < 2 {
		gap = 2
	}
	statusLine := fmt.Sprintf("%s%s%s", statusLeft, spaces(gap), statusRight)

	help := helpStyle.Render(helpText())

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + title + "\n"
	if subtitle != "" {
		lines += "  " + subtitle + "\n"
	}
	lines += "\n"
	lines += "  " + progressLine + "\n"
	lines += "\n"
	lines += "  " + statusLine + "\n"
	if m.showPanel {
		lines += renderEQPanel(m.graph)
	}
	if frame := m.vizFrame; frame != "" {
		lines += "\n" + frame + "\n"
	}
	lines += "\n"
	lines += "  " + help + "\n"

	return lines
}

// audioFlags summarizes graph state for the status line.
func (m Model) audioFlags() string {
	s := "eq off"
	if m.graph.Bypassed() {
		s = "eq n/a"
	} else if m.graph.EQEnabled() {
		s = "eq " + m.graph.PresetName()
	}
	if m.graph.Mono() {
		s += "  mono"
	}
	if m.loop.Running() {
		s += "  viz " + m.loop.ActivePreset()
	}
	return s
}

// nextEQPreset returns the preset following the current one, wrapping
// around; a custom gain set restarts the cycle.
func nextEQPreset(current string) string {
	presets := audiograph.EQPresets()
	for i, p := range presets {
		if p.Name == current {
			return presets[(i+1)%len(presets)].Name
		}
	}
	return presets[0].Name
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — lumen"
	}
	return "▶ " + title + " — lumen"
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	s := ""
	for range n {
		s += " "
	}
	return s
}
