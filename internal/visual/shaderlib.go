package visual

import (
	"math"
	"math/rand"
	"sync"

	"github.com/lumen-player/lumen/internal/analyzer"
)

// fieldFunc is a compiled shader program: it maps normalized coordinates
// plus the live audio parameters to a linear RGB emission.
type fieldFunc func(x, y, t, kick, energy float64) (r, g, b float64)

// Program is one entry in the shader preset library. Compile builds the
// program's lookup state; a program that fails to compile is disabled on
// its own without affecting the rest of the library.
type Program struct {
	Name    string
	Compile func() (fieldFunc, error)
}

// Library is the lazily loaded shader preset collection, modeled as an
// explicit two-phase init: RequestLoad is idempotent and may already be
// in flight, OnReady callbacks fire once the programs are available.
// Callers tolerate "not yet ready" and re-check rather than block.
type Library struct {
	mu       sync.Mutex
	loaded   bool
	pending  []func()
	programs []Program
}

// NewLibrary returns an unloaded library.
func NewLibrary() *Library {
	return &Library{}
}

// RequestLoad loads the program table. Safe to call repeatedly; only the
// first call does work, and queued OnReady callbacks fire exactly once.
func (l *Library) RequestLoad() {
	l.mu.Lock()
	if l.loaded {
		l.mu.Unlock()
		return
	}
	l.loaded = true
	l.programs = builtinPrograms()
	ready := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range ready {
		fn()
	}
}

// OnReady runs fn once the library is loaded: immediately when already
// loaded, otherwise queued for the load.
func (l *Library) OnReady(fn func()) {
	l.mu.Lock()
	if l.loaded {
		l.mu.Unlock()
		fn()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
}

// Loaded reports whether the programs are available.
func (l *Library) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Programs returns the loaded table (nil before the load completes).
func (l *Library) Programs() []Program {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.programs
}

// ShaderOptions are the per-preset sub-settings: automatic cycling
// through the library, cycle period, random order, or a pinned program.
type ShaderOptions struct {
	Cycle       bool
	CycleMs     int64
	Randomize   bool
	ProgramName string
}

// shaderPreset renders library programs through the bloom pipeline. A
// compile failure disables this preset alone: it stays inert, the loop
// and the other presets keep working.
type shaderPreset struct {
	lib  *Library
	opts ShaderOptions
	rng  *rand.Rand

	program  fieldFunc
	progIdx  int
	progName string
	disabled bool
	lastSwap int64
	started  int64
}

func newShaderPreset(lib *Library, opts ShaderOptions) *shaderPreset {
	if opts.CycleMs <= 0 {
		opts.CycleMs = 15000
	}
	return &shaderPreset{
		lib:      lib,
		opts:     opts,
		rng:      rand.New(rand.NewSource(2)),
		progIdx:  -1,
		lastSwap: -1,
	}
}

func (s *shaderPreset) Name() string { return PresetShader }
func (s *shaderPreset) Kind() Kind   { return KindFrame }

func (s *shaderPreset) Resize(int, int) {}

func (s *shaderPreset) Destroy() {
	s.program = nil
	s.disabled = true
}

func (s *shaderPreset) Draw(f *Frame, st *analyzer.Stats) {
	if s.disabled || f.Surface.Targets == nil {
		return
	}
	if !s.lib.Loaded() {
		// Kick the load off and skip this tick; the next draw re-checks.
		s.lib.RequestLoad()
		return
	}
	if s.started == 0 {
		s.started = f.NowMs
	}
	s.ensureProgram(f.NowMs)
	if s.program == nil {
		return
	}

	scene := f.Surface.Targets.Scene
	scene.Clear()
	t := float64(f.NowMs-s.started) / 1000

	w := scene.W
	h := scene.H
	for py := 0; py < h; py++ {
		y := float64(py)/float64(h)*2 - 1
		for px := 0; px < w; px++ {
			x := float64(px)/float64(w)*2 - 1
			r, g, b := s.program(x, y, t, st.Kick, st.EnergyAverage)
			scene.Set(px, py, r, g, b)
		}
	}

	blur := bloom(f.Surface.Targets, f.Theme)
	glow := 0.4 + 0.6*st.Kick
	composite(f.Surface.Canvas, scene, blur, f.Theme, glow, st.Primary)
}

// ensureProgram compiles the pinned or next-in-cycle program. Compile
// errors disable the preset and are logged once.
func (s *shaderPreset) ensureProgram(nowMs int64) {
	progs := s.lib.Programs()
	if len(progs) == 0 {
		return
	}

	want := s.progIdx
	switch {
	case s.opts.ProgramName != "" && s.progName != s.opts.ProgramName:
		want = -1
		for i, p := range progs {
			if p.Name == s.opts.ProgramName {
				want = i
			}
		}
		if want < 0 {
			want = 0
		}
	case s.progIdx < 0:
		want = 0
		if s.opts.Randomize {
			want = s.rng.Intn(len(progs))
		}
	case s.opts.Cycle && nowMs-s.lastSwap >= s.opts.CycleMs:
		if s.opts.Randomize {
			want = s.rng.Intn(len(progs))
		} else {
			want = (s.progIdx + 1) % len(progs)
		}
	}

	if want == s.progIdx && s.program != nil {
		return
	}

	compiled, err := progs[want].Compile()
	if err != nil {
		log.WithError(err).WithField("program", progs[want].Name).
			Error("shader program failed to compile, preset disabled")
		s.disabled = true
		s.program = nil
		return
	}
	s.program = compiled
	s.progIdx = want
	s.progName = progs[want].Name
	s.lastSwap = nowMs
}

// builtinPrograms is the bundled library table.
func builtinPrograms() []Program {
	return []Program{
		{
			Name: "nebula",
			Compile: func() (fieldFunc, error) {
				return func(x, y, t, kick, energy float64) (float64, float64, float64) {
					d := math.Hypot(x, y)
					wave := math.Sin(d*9 - t*2.4)
					v := clamp01((wave*0.5 + 0.5) * (0.25 + kick) / (0.3 + d))
					return v * 0.9, v * 0.45, v * (0.8 + 0.2*energy)
				}, nil
			},
		},
		{
			Name: "lattice",
			Compile: func() (fieldFunc, error) {
				return func(x, y, t, kick, energy float64) (float64, float64, float64) {
					gx := math.Sin(x*11 + t)
					gy := math.Sin(y*7 - t*1.3)
					v := clamp01(gx * gy * (0.4 + 0.6*kick))
					return v * 0.3, v * 0.85, v * 0.7
				}, nil
			},
		},
		{
			Name: "corona",
			Compile: func() (fieldFunc, error) {
				// Precomputed angular lobes; the table build is the
				// "compile" step for this program.
				lobes := make([]float64, 256)
				for i := range lobes {
					a := float64(i) / 256 * 2 * math.Pi
					lobes[i] = 0.6 + 0.4*math.Sin(a*5)
				}
				return func(x, y, t, kick, energy float64) (float64, float64, float64) {
					d := math.Hypot(x, y)
					if d == 0 {
						d = 1e-6
					}
					a := math.Atan2(y, x) + t*0.4
					idx := int((a/(2*math.Pi)+10)*256) % 256
					ring := math.Exp(-math.Abs(d-0.55-0.25*kick) * 8)
					v := clamp01(ring * lobes[idx] * (0.5 + energy))
					return v, v * 0.6, v * 0.25
				}, nil
			},
		},
	}
}
