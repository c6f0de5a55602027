package ui

import "github.com/charmbracelet/lipgloss"

// The chrome palette leans toward the default accent (#7aa2f7) so the
// fixed lines read as part of the visualizer rather than a frame around
// it.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#3A5CCC", Dark: "#7AA2F7"})

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1A1B26", Dark: "#C0CAF5"})

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#565A6E", Dark: "#A9B1D6"})

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#787C99", Dark: "#565F89"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4D5273", Dark: "#9AA5CE"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9699A8", Dark: "#414868"})
)
