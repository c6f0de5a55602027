package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/lumen-player/lumen/internal/audiograph"
	"github.com/lumen-player/lumen/internal/player"
	"github.com/lumen-player/lumen/internal/settings"
	"github.com/lumen-player/lumen/internal/ui"
	"github.com/lumen-player/lumen/internal/visual"
)

func main() {
	setupLogging()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: lumen <audio file>")
		os.Exit(1)
	}
	path := os.Args[1]

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is a directory\n", path)
		os.Exit(1)
	}

	settPath, err := settings.DefaultPath()
	if err != nil {
		settPath = ""
	}
	sett, err := settings.Load(settPath)
	if err != nil {
		logrus.WithError(err).Warn("settings unreadable, using defaults")
		sett = settings.Default()
	}

	meta := player.ReadMetadata(path)

	graph := audiograph.NewManager()
	applyAudioSettings(graph, sett)

	p, err := player.New(path, graph)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating player: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()
	p.SetVolume(sett.Volume)

	loop := buildRenderLoop(graph, p, sett)
	unregister := graph.OnGraphChange(loop.GraphChanged)
	defer unregister()
	if sett.Visualizer.Enabled {
		loop.Start()
	}

	model := ui.New(p, graph, loop, sett, settPath, meta)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func applyAudioSettings(graph *audiograph.Manager, sett *settings.Settings) {
	if _, ok := audiograph.LookupEQPreset(sett.EQ.Preset); ok {
		graph.ApplyPreset(sett.EQ.Preset)
	} else {
		var gains [audiograph.NumBands]float64
		copy(gains[:], sett.EQ.Gains)
		graph.SetAllGains(gains)
	}
	graph.SetEQEnabled(sett.EQ.Enabled)
	graph.SetMono(sett.EQ.Mono)
}

func buildRenderLoop(graph *audiograph.Manager, p *player.Player, sett *settings.Settings) *visual.Loop {
	theme := visual.ThemeDark
	if sett.Theme == "light" {
		theme = visual.ThemeLight
	}

	loop := visual.NewLoop(visual.Config{
		ResolveTap: func() visual.Snapshotter {
			if tap := graph.Tap(); tap != nil {
				return tap
			}
			return nil
		},
		Volume: p.Volume,
		Accent: func() string { return sett.Accent },
		Theme:  theme,
		Shader: visual.ShaderOptions{
			Cycle:       sett.Visualizer.Shader.Cycle,
			CycleMs:     sett.Visualizer.Shader.CycleMs,
			Randomize:   sett.Visualizer.Shader.Randomize,
			ProgramName: sett.Visualizer.Shader.Program,
		},
	})
	loop.SetPreset(sett.Visualizer.Preset)
	if sett.Visualizer.Smart {
		loop.Analyzer().SetSmart(true)
	} else {
		loop.Analyzer().SetSensitivity(sett.Visualizer.Sensitivity)
	}
	return loop
}

// setupLogging sends structured logs to the file named by LUMEN_LOG; by
// default they are discarded so nothing scribbles over the TUI.
func setupLogging() {
	logrus.SetLevel(logrus.InfoLevel)
	if path := os.Getenv("LUMEN_LOG"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			logrus.SetOutput(f)
			logrus.SetLevel(logrus.DebugLevel)
			return
		}
	}
	logrus.SetOutput(io.Discard)
}
