package visual

import (
	"math"
	"math/rand"

	"github.com/charmbracelet/harmonica"

	"github.com/lumen-player/lumen/internal/analyzer"
)

const maxParticles = 220

type particle struct {
	x, y   float64
	vx, vy float64
	life   float64
	decay  float64
	glyph  rune
}

// particles is the immediate-mode particle field: a burst of glyphs per
// kick drifting outward from the center, with a spring-smoothed pulse
// ring underneath so the field breathes with the beat.
type particles struct {
	field []particle
	rng   *rand.Rand

	spring   harmonica.Spring
	pulse    float64
	pulseVel float64

	w, h int
}

func newParticles() *particles {
	return &particles{
		field:  make([]particle, 0, maxParticles),
		rng:    rand.New(rand.NewSource(1)),
		spring: harmonica.NewSpring(harmonica.FPS(30), 8.0, 0.6),
	}
}

func (p *particles) Name() string { return PresetParticles }
func (p *particles) Kind() Kind   { return KindCell }

func (p *particles) Resize(w, h int) {
	p.w = w
	p.h = h
}

func (p *particles) Destroy() {
	p.field = nil
}

func (p *particles) Draw(f *Frame, st *analyzer.Stats) {
	c := f.Surface.Canvas
	w, h := c.Size()
	c.Clear()
	if w < 4 || h < 2 || p.field == nil {
		return
	}

	p.pulse, p.pulseVel = p.spring.Update(p.pulse, p.pulseVel, st.Kick)

	// Spawn a burst proportional to the kick, scaled by sensitivity.
	burst := int(st.Kick * st.Sensitivity * 14)
	cx := float64(w) / 2
	cy := float64(h) / 2
	for i := 0; i < burst && len(p.field) < maxParticles; i++ {
		angle := p.rng.Float64() * 2 * math.Pi
		speed := 0.4 + p.rng.Float64()*1.4
		glyph := '•'
		if p.rng.Float64() < 0.25 {
			glyph = '✦'
		}
		p.field = append(p.field, particle{
			x:     cx,
			y:     cy,
			vx:    math.Cos(angle) * speed * 2, // cells are taller than wide
			vy:    math.Sin(angle) * speed,
			life:  1,
			decay: 0.02 + p.rng.Float64()*0.03,
			glyph: glyph,
		})
	}

	// Pulse ring under the field.
	radius := (0.15 + 0.35*p.pulse) * float64(h) / 2
	ringHue := hueOf(st.Primary.R, st.Primary.G, st.Primary.B)
	for a := 0.0; a < 2*math.Pi; a += 0.15 {
		x := int(cx + math.Cos(a)*radius*2)
		y := int(cy + math.Sin(a)*radius)
		c.Set(x, y, '·', rgbFromHSV(ringHue, 0.3, 0.3+0.4*p.pulse))
	}

	alive := p.field[:0]
	for _, pt := range p.field {
		pt.x += pt.vx
		pt.y += pt.vy
		pt.vy -= 0.01 // gentle updrift
		pt.life -= pt.decay
		if pt.life <= 0 || pt.x < 0 || pt.x >= float64(w) || pt.y < 0 || pt.y >= float64(h) {
			continue
		}
		col := rgbFromHSV(ringHue+0.08*(1-pt.life), 0.55+0.35*pt.life, 0.35+0.6*pt.life)
		glyph := pt.glyph
		if pt.life < 0.3 {
			glyph = '·'
		}
		c.Set(int(pt.x), int(pt.y), glyph, col)
		alive = append(alive, pt)
	}
	p.field = alive
}

func hueOf(r, g, b float64) float64 {
	maxC := max3(r, g, b)
	minC := min3(r, g, b)
	d := maxC - minC
	if d == 0 {
		return 0
	}
	var h float64
	switch maxC {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6
	if h < 0 {
		h += 1
	}
	return h
}
