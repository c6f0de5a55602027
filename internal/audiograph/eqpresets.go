package audiograph

// EQPreset is a named table of sixteen band gains in dB. Presets are read
// by the manager and never mutated by it; "custom" is whatever the user
// last edited, owned by the settings layer.
type EQPreset struct {
	Name  string
	Gains [NumBands]float64
}

var eqPresets = []EQPreset{
	{Name: "flat"},
	{Name: "bass_boost", Gains: [NumBands]float64{
		7, 6.5, 6, 5, 3.5, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}},
	{Name: "treble_boost", Gains: [NumBands]float64{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4.5, 5.5, 6, 6,
	}},
	{Name: "vocal", Gains: [NumBands]float64{
		-2, -2, -1.5, -1, 0, 1, 2.5, 3.5, 3.5, 3, 2, 1, 0, -1, -1.5, -2,
	}},
	{Name: "loudness", Gains: [NumBands]float64{
		6, 5.5, 5, 3.5, 1, 0, -1, -1.5, -1.5, -1, 0, 1, 3, 4.5, 5, 5.5,
	}},
}

// EQPresets returns the built-in preset tables in display order.
func EQPresets() []EQPreset {
	out := make([]EQPreset, len(eqPresets))
	copy(out, eqPresets)
	return out
}

// LookupEQPreset returns the named preset table. The second result is
// false for unknown names.
func LookupEQPreset(name string) (EQPreset, bool) {
	for _, p := range eqPresets {
		if p.Name == name {
			return p, true
		}
	}
	return EQPreset{}, false
}
