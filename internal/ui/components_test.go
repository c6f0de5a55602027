package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepeatModeCycles(t *testing.T) {
	assert.Equal(t, RepeatOne, RepeatOff.Next())
	assert.Equal(t, RepeatOff, RepeatOne.Next())
	assert.Equal(t, "⟳ one", RepeatOne.Icon())
	assert.Empty(t, RepeatOff.Icon())
}

func TestProgressBarClamps(t *testing.T) {
	full := renderProgressBar(120, 60, 20)
	assert.False(t, strings.Contains(full, "─"), "over-long elapsed should fill the bar")

	empty := renderProgressBar(-5, 60, 20)
	assert.False(t, strings.Contains(empty, "━"), "negative elapsed should leave the bar empty")
}

func TestGainBarCentersOnZero(t *testing.T) {
	flat := renderGainBar(0)
	assert.Equal(t, 1, strings.Count(flat, "┃"))
	assert.False(t, strings.Contains(flat, "━"))

	boost := renderGainBar(30)
	cut := renderGainBar(-30)
	assert.Equal(t, 10, strings.Count(boost, "━"))
	assert.Equal(t, 10, strings.Count(cut, "━"))

	// Boost fills right of center, cut fills left.
	assert.Less(t, strings.Index(boost, "┃"), strings.Index(boost, "━"))
	assert.Greater(t, strings.Index(cut, "┃"), strings.Index(cut, "━"))
}

func TestNextEQPresetWraps(t *testing.T) {
	start := nextEQPreset("custom") // unknown restarts the cycle
	seen := map[string]bool{start: true}
	cur := start
	for {
		cur = nextEQPreset(cur)
		if cur == start {
			break
		}
		assert.False(t, seen[cur], "preset %q repeated before wrapping", cur)
		seen[cur] = true
	}
	assert.GreaterOrEqual(t, len(seen), 4)
}

func TestFormatHz(t *testing.T) {
	assert.Equal(t, "20Hz", formatHz(20))
	assert.Equal(t, "31.5Hz", formatHz(31.5))
	assert.Equal(t, "2kHz", formatHz(2000))
	assert.Equal(t, "1.25kHz", formatHz(1250))
	assert.Equal(t, "12.5kHz", formatHz(12500))
}
