package ui

// RepeatMode selects what happens when the track runs out.
type RepeatMode uint8

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	repeatModeCount
)

// Next cycles through the modes in declaration order.
func (r RepeatMode) Next() RepeatMode {
	return (r + 1) % repeatModeCount
}

// Icon is the status-line marker; empty while repeat is off.
func (r RepeatMode) Icon() string {
	if r == RepeatOne {
		return "⟳ one"
	}
	return ""
}
