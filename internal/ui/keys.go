package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Pause     key.Binding
	SeekBack  key.Binding
	SeekFwd   key.Binding
	VolUp     key.Binding
	VolDown   key.Binding
	Repeat    key.Binding
	VizToggle key.Binding
	VizPreset key.Binding
	EQToggle  key.Binding
	EQPreset  key.Binding
	Mono      key.Binding
	SensDown  key.Binding
	SensUp    key.Binding
	SmartSens key.Binding
	Panel     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		Pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		SeekBack:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "seek")),
		SeekFwd:   key.NewBinding(key.WithKeys("right", "l")),
		VolUp:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "volume")),
		VolDown:   key.NewBinding(key.WithKeys("down", "j")),
		Repeat:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		VizToggle: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "visuals on/off")),
		VizPreset: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next visual")),
		EQToggle:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "EQ on/off")),
		EQPreset:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "EQ preset")),
		Mono:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mono")),
		SensDown:  key.NewBinding(key.WithKeys("[")),
		SensUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "sensitivity")),
		SmartSens: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto sensitivity")),
		Panel:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "EQ panel")),
	}
}

func helpText() string {
	return "space pause  ←/→ seek  ↑/↓ volume  v viz  x on/off  e eq  tab panel  q quit"
}
