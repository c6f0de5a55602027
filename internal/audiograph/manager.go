// Package audiograph owns the processing chain between a decoded audio
// source and the output sink: an optional mono downmix, an optional
// sixteen-band peaking equalizer, an analysis tap for the visuals, and an
// output gain stage. The chain can be rebuilt at any time without audible
// glitches; a rebuild that fails falls back to a direct bypass so audio
// never silently stops.
package audiograph

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "audiograph")

// Backend is the suspendable audio device behind the sink. Some backends
// suspend on inactivity and silently drop state, so Resume re-asserts the
// current topology after waking the device.
type Backend interface {
	Suspend() error
	Resume() error
}

// Manager builds and live-reconfigures the node chain. Node instances are
// created once and reused across rebuilds; only the active topology
// changes. All mutation happens on the settings call path, never on the
// audio read path.
type Manager struct {
	mu          sync.Mutex
	attached    bool
	unavailable bool

	eqEnabled bool
	mono      bool
	bypass    bool
	preset    string

	bands   [NumBands]*peakingBand
	downmix downmixNode
	tap     *AnalysisTap
	out     *gainNode

	chain  []node // nil while bypassed or unattached
	reader *processReader

	backend Backend

	observers    map[int]func()
	nextObserver int

	// buildHook, when set, can veto a rebuilt topology. Used to simulate
	// connect failures.
	buildHook func([]node) error
}

// NewManager creates the manager and its persistent node instances.
func NewManager() *Manager {
	m := &Manager{
		tap:       newAnalysisTap(),
		out:       &gainNode{gain: 1},
		preset:    "flat",
		observers: make(map[int]func()),
	}
	for i := range m.bands {
		m.bands[i] = newPeakingBand(bandCenters[i])
	}
	return m
}

// MarkUnavailable puts the manager into the degraded no-processing mode
// used on constrained playback backends: Attach becomes a pass-through
// and the tap reports unavailable. Callers treat a missing tap as "no
// visuals", not an error.
func (m *Manager) MarkUnavailable() {
	m.mu.Lock()
	m.unavailable = true
	m.chain = nil
	m.mu.Unlock()
	log.Warn("audio backend constrained, visuals and EQ disabled")
}

// Attach splices the chain into the stream read path and returns the
// wrapped source. Attaching is idempotent: a second call while already
// attached returns the existing wrapped reader unchanged.
func (m *Manager) Attach(src io.ReadSeeker) io.ReadSeeker {
	m.mu.Lock()
	if m.unavailable {
		m.mu.Unlock()
		return src
	}
	if m.attached {
		r := m.reader
		m.mu.Unlock()
		return r
	}
	m.attached = true
	m.reader = &processReader{m: m, src: src}
	m.rebuildLocked()
	m.mu.Unlock()

	m.notify()
	return m.reader
}

// Tap returns the analysis tap, or nil when no tap is available (not
// attached, or a constrained backend).
func (m *Manager) Tap() *AnalysisTap {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.attached || m.unavailable {
		return nil
	}
	return m.tap
}

// SetBandGain ramps one band toward dB, clamped to [MinGainDB, MaxGainDB].
// An out-of-range index is ignored.
func (m *Manager) SetBandGain(index int, dB float64) {
	if index < 0 || index >= NumBands {
		return
	}
	m.mu.Lock()
	m.bands[index].setGain(dB)
	m.preset = "custom"
	m.mu.Unlock()
}

// SetAllGains applies a full gain table with the same ramp semantics as
// SetBandGain.
func (m *Manager) SetAllGains(gains [NumBands]float64) {
	m.mu.Lock()
	for i := range m.bands {
		m.bands[i].setGain(gains[i])
	}
	m.preset = "custom"
	m.mu.Unlock()
}

// ApplyPreset loads a named gain table. Unknown names are ignored and
// reported false.
func (m *Manager) ApplyPreset(name string) bool {
	p, ok := LookupEQPreset(name)
	if !ok {
		return false
	}
	m.mu.Lock()
	for i := range m.bands {
		m.bands[i].setGain(p.Gains[i])
	}
	m.preset = p.Name
	m.mu.Unlock()
	return true
}

// Gains returns the sixteen target gains in dB.
func (m *Manager) Gains() [NumBands]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [NumBands]float64
	for i, b := range m.bands {
		out[i] = b.targetDB
	}
	return out
}

// BandGain returns one target gain; out-of-range indices read as zero.
func (m *Manager) BandGain(index int) float64 {
	if index < 0 || index >= NumBands {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bands[index].targetDB
}

// PresetName reports the active EQ preset ("custom" after manual edits).
func (m *Manager) PresetName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preset
}

// SetEQEnabled toggles the filter chain and rebuilds the topology.
func (m *Manager) SetEQEnabled(on bool) {
	m.mu.Lock()
	m.eqEnabled = on
	m.rebuildLocked()
	m.mu.Unlock()
	m.notify()
}

// SetMono toggles the downmix stage and rebuilds the topology.
func (m *Manager) SetMono(on bool) {
	m.mu.Lock()
	m.mono = on
	m.rebuildLocked()
	m.mu.Unlock()
	m.notify()
}

// EQEnabled reports whether the filter chain is in the active topology.
func (m *Manager) EQEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eqEnabled
}

// Mono reports whether the downmix stage is in the active topology.
func (m *Manager) Mono() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mono
}

// Bypassed reports whether the last rebuild fell back to the direct
// source-to-sink path.
func (m *Manager) Bypassed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bypass
}

// SetOutputGain sets the linear gain of the output stage.
func (m *Manager) SetOutputGain(g float64) {
	if g < 0 {
		g = 0
	}
	m.mu.Lock()
	m.out.gain = g
	m.mu.Unlock()
}

// OutputGain returns the linear gain of the output stage.
func (m *Manager) OutputGain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.gain
}

// OnGraphChange registers fn to run synchronously after every successful
// rebuild, and returns its unregister func. A panicking callback is
// isolated and does not abort the notification loop.
func (m *Manager) OnGraphChange(fn func()) func() {
	m.mu.Lock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// SetBackend attaches the suspendable device used by Resume.
func (m *Manager) SetBackend(b Backend) {
	m.mu.Lock()
	m.backend = b
	m.mu.Unlock()
}

// Resume wakes a suspended backend, re-asserts the current topology
// (suspended backends may silently drop connections), and reports whether
// the backend ended up running.
func (m *Manager) Resume() (bool, error) {
	m.mu.Lock()
	b := m.backend
	unavailable := m.unavailable
	m.mu.Unlock()

	if unavailable || b == nil {
		return false, nil
	}
	if err := b.Resume(); err != nil {
		log.WithError(err).Warn("backend resume failed")
		return false, err
	}

	m.mu.Lock()
	m.rebuildLocked()
	m.mu.Unlock()
	m.notify()
	return true, nil
}

// rebuildLocked reconnects the active topology in the fixed order
// source -> [downmix?] -> [filter chain?] -> tap -> output gain -> sink.
// The swap is a single uninterruptible assignment under the mutex, so the
// read path never observes a partial chain. On failure the chain drops to
// a direct bypass and the tap is cleared so visuals stop cleanly.
func (m *Manager) rebuildLocked() {
	if !m.attached || m.unavailable {
		return
	}

	next := make([]node, 0, 4)
	if m.mono {
		next = append(next, m.downmix)
	}
	if m.eqEnabled {
		next = append(next, filterChain{bands: &m.bands})
	}
	next = append(next, m.tap, m.out)

	if m.buildHook != nil {
		if err := m.buildHook(next); err != nil {
			m.chain = nil
			m.bypass = true
			m.tap.reset()
			log.WithError(err).Warn("graph rebuild failed, bypassing to direct output")
			return
		}
	}

	m.chain = next
	m.bypass = false
}

// notify runs the observer list outside the lock, one recover per
// callback.
func (m *Manager) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("graph change observer panicked")
				}
			}()
			fn()
		}()
	}
}

// processBlock runs one block of interleaved stereo frames through the
// active chain. Called from the audio read path only; the lock is held
// across the whole block so ramp targets and the output gain are never
// read mid-write from the settings path.
func (m *Manager) processBlock(frames []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.chain {
		n.process(frames)
	}
}

// resetNodes clears all node state after a stream discontinuity.
func (m *Manager) resetNodes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bands {
		b.reset()
	}
	m.tap.reset()
}
