package ui

import (
	"fmt"
	"strings"

	"github.com/lumen-player/lumen/internal/audiograph"
)

// panelHeight is the vertical space the EQ panel occupies in the view.
const panelHeight = audiograph.NumBands + 2

func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2 // leave some margin

	var ratio float64
	if total > 0 {
		ratio = elapsed / total
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	filled := int(ratio * float64(barWidth))
	// Note: filled <= barWidth is guaranteed since ratio is clamped to [0,1].

	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
	return bar
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100))
}

// renderEQPanel draws one row per band: center frequency, a gain bar
// centered on 0 dB, and the numeric gain.
func renderEQPanel(graph *audiograph.Manager) string {
	gains := graph.Gains()
	centers := audiograph.BandCenters()

	var b strings.Builder
	b.WriteString("\n")
	for i := 0; i < audiograph.NumBands; i++ {
		b.WriteString("  ")
		b.WriteString(timeStyle.Render(fmt.Sprintf("%7s", formatHz(centers[i]))))
		b.WriteString(" ")
		b.WriteString(renderGainBar(gains[i]))
		b.WriteString(statusStyle.Render(fmt.Sprintf(" %+5.1f dB", gains[i])))
		b.WriteString("\n")
	}
	return b.String()
}

// renderGainBar maps [MinGainDB, MaxGainDB] onto a 21-cell bar with the
// zero point in the middle.
func renderGainBar(gain float64) string {
	const half = 10
	cells := int(gain / audiograph.MaxGainDB * half)
	if cells > half {
		cells = half
	}
	if cells < -half {
		cells = -half
	}

	var b strings.Builder
	for i := -half; i <= half; i++ {
		switch {
		case i == 0:
			b.WriteString("┃")
		case i < 0 && cells < 0 && i >= cells:
			b.WriteString("━")
		case i > 0 && cells > 0 && i <= cells:
			b.WriteString("━")
		default:
			b.WriteString("─")
		}
	}
	return b.String()
}

func formatHz(hz float64) string {
	if hz >= 1000 {
		if hz == float64(int(hz/1000))*1000 {
			return fmt.Sprintf("%.0fkHz", hz/1000)
		}
		return fmt.Sprintf("%.3gkHz", hz/1000)
	}
	if hz == float64(int(hz)) {
		return fmt.Sprintf("%.0fHz", hz)
	}
	return fmt.Sprintf("%.1fHz", hz)
}
