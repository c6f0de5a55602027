// Package analyzer turns periodic frequency-magnitude snapshots into the
// per-tick Stats record the presets draw from: a slow loudness baseline,
// an auto-gain-normalized intensity, and a hysteresis "kick" signal that
// rises on transients and stays alive through sustained loud passages.
package analyzer

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	bassBins       = 4
	intensityScale = 4.0
	minVolume      = 0.05

	energyDecay = 0.99 // slow loudness baseline
	upbeatDecay = 0.92 // faster EMA, tracks sustained loud passages

	// Adaptive threshold: tracks intensity peaks, relaxing faster during
	// quiet passages so a beat needs a lower absolute bar to register.
	thresholdDecay      = 0.998
	thresholdQuietDecay = 0.99
	quietEnergy         = 0.3
	fireRatio           = 0.7

	risingRatio  = 1.1
	risingMargin = 0.01
	debounceMs   = 50

	sustainLevel = 0.5
	sustainDecay = 0.95
	idleDecay    = 0.9
)

// Stats is the per-tick analysis record. One instance is reused across
// ticks; presets read it during their draw call and must not retain it.
type Stats struct {
	EnergyAverage float64
	Kick          float64
	LastKickMs    int64
	Sensitivity   float64
	Primary       colorful.Color
	Smart         bool
}

// Analyzer derives Stats from tap snapshots. It is owned by the render
// loop and only ever touched from the tick path.
type Analyzer struct {
	stats Stats

	upbeat        float64
	threshold     float64
	prevIntensity float64

	userSensitivity float64
	smart           bool

	lastAccent string
	parseCount int
	primaryOK  bool
}

// New returns an analyzer with a mid-range fixed sensitivity.
func New() *Analyzer {
	return &Analyzer{
		userSensitivity: 0.5,
		stats:           Stats{LastKickMs: -debounceMs},
	}
}

// SetSensitivity fixes the sensitivity to v in [0,1] (clamped).
func (a *Analyzer) SetSensitivity(v float64) {
	a.userSensitivity = clamp01(v)
	a.smart = false
}

// SetSmart switches sensitivity to the adaptive loudness-derived curve.
func (a *Analyzer) SetSmart(on bool) {
	a.smart = on
}

// Tick consumes one frequency snapshot and updates the shared Stats
// record in place. volume is the current output volume in [0,1]; accent
// is the theme accent color, re-parsed only when the string changes.
func (a *Analyzer) Tick(freq []float64, volume float64, accent string, nowMs int64) *Stats {
	a.sampleAccent(accent)

	var bass float64
	n := bassBins
	if n > len(freq) {
		n = len(freq)
	}
	for i := 0; i < n; i++ {
		bass += freq[i]
	}
	if n > 0 {
		bass /= float64(n)
	}

	// Scale inversely by volume so visuals stay consistent across volume
	// levels, and square to exaggerate peaks.
	if volume < minVolume {
		volume = minVolume
	}
	intensity := bass / volume
	intensity = intensity * intensity * intensityScale

	a.stats.EnergyAverage = a.stats.EnergyAverage*energyDecay + intensity*(1-energyDecay)
	a.upbeat = a.upbeat*upbeatDecay + intensity*(1-upbeatDecay)

	decay := thresholdDecay
	if a.stats.EnergyAverage < quietEnergy {
		decay = thresholdQuietDecay
	}
	a.threshold *= decay
	if intensity > a.threshold {
		a.threshold = intensity
	}

	rising := intensity > a.prevIntensity*risingRatio+risingMargin
	elapsed := nowMs - a.stats.LastKickMs
	if intensity > fireRatio*a.threshold && rising && elapsed >= debounceMs {
		a.stats.Kick = 1
		a.stats.LastKickMs = nowMs
	} else if a.upbeat > sustainLevel {
		// Sustained loud passage: decay toward a floor derived from the
		// fast EMA so the visuals stay alive between transients.
		floor := clamp01(a.upbeat * 0.6)
		a.stats.Kick *= sustainDecay
		if a.stats.Kick < floor {
			a.stats.Kick = floor
		}
	} else {
		a.stats.Kick *= idleDecay
	}

	a.prevIntensity = intensity
	a.stats.Smart = a.smart
	a.stats.Sensitivity = a.sensitivity()
	return &a.stats
}

// Stats returns the shared record without advancing the analysis.
func (a *Analyzer) Stats() *Stats {
	return &a.stats
}

func (a *Analyzer) sensitivity() float64 {
	if !a.smart {
		return a.userSensitivity
	}
	ea := a.stats.EnergyAverage
	switch {
	case ea <= 0.1:
		return 0.3
	case ea < 0.5:
		return 0.3 + (ea-0.1)/0.4*0.6
	default:
		return 0.9
	}
}

// sampleAccent caches the parsed accent color, re-deriving it only when
// the string actually changes.
func (a *Analyzer) sampleAccent(accent string) {
	if accent == a.lastAccent {
		return
	}
	a.lastAccent = accent
	c, err := colorful.Hex(accent)
	if err != nil {
		if !a.primaryOK {
			a.stats.Primary = colorful.Color{R: 1, G: 1, B: 1}
		}
		return
	}
	a.parseCount++
	a.primaryOK = true
	a.stats.Primary = c
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
