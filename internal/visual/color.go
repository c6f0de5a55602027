package visual

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

// RGB is an 8-bit display color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	profileOnce sync.Once
	profile     colorProfile
	seqCache    sync.Map
)

func currentColorProfile() colorProfile {
	profileOnce.Do(func() {
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			profile = colorNone
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
			profile = colorTrueColor
		case strings.Contains(term, "256color"):
			profile = colorANSI256
		case term == "", term == "dumb":
			profile = colorNone
		default:
			profile = colorANSI16
		}
	})
	return profile
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerpRGB(a, b RGB, t float64) RGB {
	t = clamp01(t)
	return RGB{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

func rgbFromHSV(h, s, v float64) RGB {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	s = clamp01(s)
	v = clamp01(v)

	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return RGB{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255)}
}

func rgbFromColorful(c colorful.Color) RGB {
	return RGB{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
	}
}

// ansiState tracks the last emitted foreground/background so runs of
// identically colored cells cost one escape sequence.
type ansiState struct {
	profile colorProfile
	fg      uint32
	bg      uint32
}

const noColorKey = ^uint32(0)

func newANSIState() ansiState {
	return ansiState{profile: currentColorProfile(), fg: noColorKey, bg: noColorKey}
}

func (s *ansiState) setFg(sb *strings.Builder, c RGB) {
	if s.profile == colorNone {
		return
	}
	key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if key == s.fg {
		return
	}
	sb.WriteString(colorSequence(s.profile, c, false))
	s.fg = key
}

func (s *ansiState) setBg(sb *strings.Builder, c RGB) {
	if s.profile == colorNone {
		return
	}
	key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if key == s.bg {
		return
	}
	sb.WriteString(colorSequence(s.profile, c, true))
	s.bg = key
}

func (s *ansiState) clearBg(sb *strings.Builder) {
	if s.profile == colorNone || s.bg == noColorKey {
		return
	}
	sb.WriteString("\x1b[49m")
	s.bg = noColorKey
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.profile == colorNone || (s.fg == noColorKey && s.bg == noColorKey) {
		return
	}
	sb.WriteString("\x1b[0m")
	s.fg = noColorKey
	s.bg = noColorKey
}

func colorSequence(profile colorProfile, c RGB, background bool) string {
	kind := uint64(0)
	if background {
		kind = 1
	}
	key := kind<<33 | uint64(profile)<<25 | uint64(c.R)<<16 | uint64(c.G)<<8 | uint64(c.B)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	base := 38
	if background {
		base = 48
	}

	var seq string
	switch profile {
	case colorTrueColor:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", base, c.R, c.G, c.B)
	case colorANSI256:
		r := int(c.R) * 5 / 255
		g := int(c.G) * 5 / 255
		b := int(c.B) * 5 / 255
		idx := 16 + 36*r + 6*g + b
		seq = fmt.Sprintf("\x1b[%d;5;%dm", base, idx)
	case colorANSI16:
		pal := []RGB{
			{R: 0, G: 0, B: 0},
			{R: 205, G: 49, B: 49},
			{R: 13, G: 188, B: 121},
			{R: 229, G: 229, B: 16},
			{R: 36, G: 114, B: 200},
			{R: 188, G: 63, B: 188},
			{R: 17, G: 168, B: 205},
			{R: 229, G: 229, B: 229},
		}
		best := 0
		bestDist := math.MaxFloat64
		for i, p := range pal {
			dr := float64(c.R) - float64(p.R)
			dg := float64(c.G) - float64(p.G)
			db := float64(c.B) - float64(p.B)
			d := dr*dr + dg*dg + db*db
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		off := 30
		if background {
			off = 40
		}
		seq = fmt.Sprintf("\x1b[%dm", off+best)
	default:
		seq = ""
	}

	seqCache.Store(key, seq)
	return seq
}
