package config

import (
	"fmt"
	"sort"
	"strings"
)

// Presets are the worked parameter regimes from the signaling literature.
// Each is a full scenario: load one, tweak it, run it.
var Presets = map[string]*Scenario{
	"baseline": {
		Name: "baseline",
		Params: map[string]float64{
			"dA": 0.5, "da": 0.5, "eA": 0.5, "ea": 0.5,
			"PiaA": 7.0, "PiAA": 5.0, "Piaa": 3.0, "PiAa": 2.0,
			"c": 1.0,
		},
		Init:   InitConfig{M0: 0.5},
		Run:    RunConfig{RTol: DefaultRTol},
		Solver: SolverConfig{Strategy: "root", Method: "newton", Tol: DefaultTol, UseJacobian: true},
		Sweep:  SweepConfig{Guesses: 100, Seed: 42},
	},
	// Signals carry no information: both types signal A half the time,
	// so screening cannot separate them.
	"random-signaling": {
		Name: "random-signaling",
		Params: map[string]float64{
			"dA": 0.5, "da": 0.5, "eA": 0.2, "ea": 0.2,
			"PiaA": 6.0, "PiAA": 5.0, "Piaa": 4.0, "PiAa": 3.0,
		},
		Init:   InitConfig{M0: 0.5},
		Run:    RunConfig{RTol: DefaultRTol},
		Solver: SolverConfig{Strategy: "root", Method: "newton", Tol: 1e-12, UseJacobian: true},
		Sweep:  SweepConfig{Guesses: 100, Seed: 42},
	},
	// Types signal themselves but reads are noisy.
	"precise-signaling": {
		Name: "precise-signaling",
		Params: map[string]float64{
			"dA": 0.9, "da": 0.1, "eA": 0.1, "ea": 0.1,
			"PiaA": 6.0, "PiAA": 5.0, "Piaa": 4.0, "PiAa": 3.0,
		},
		Init:   InitConfig{M0: 0.5},
		Run:    RunConfig{RTol: DefaultRTol},
		Solver: SolverConfig{Strategy: "root", Method: "newton", Tol: DefaultTol, UseJacobian: true},
		Sweep:  SweepConfig{Guesses: 100, Seed: 42},
	},
	// Honest signals read without error: the GA and ga islands never mix.
	"perfect-screening": {
		Name: "perfect-screening",
		Params: map[string]float64{
			"dA": 1.0, "da": 1.0, "eA": 0.0, "ea": 0.0,
			"PiaA": 6.0, "PiAA": 5.0, "Piaa": 3.0, "PiAa": 2.0,
		},
		Init:   InitConfig{M0: 0.3},
		Run:    RunConfig{Steps: 100},
		Solver: SolverConfig{Strategy: "root", Method: "newton", Tol: DefaultTol, UseJacobian: true},
		Sweep:  SweepConfig{Guesses: 100, Seed: 42},
	},
}

// GetPreset returns a deep copy of the named preset, so callers can adjust
// it without touching the shared map.
func GetPreset(name string) (*Scenario, error) {
	sc, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(ListPresets(), ", "))
	}
	out := *sc
	out.Params = make(map[string]float64, len(sc.Params))
	for k, v := range sc.Params {
		out.Params[k] = v
	}
	if sc.Init.State != nil {
		out.Init.State = append([]float64(nil), sc.Init.State...)
	}
	return &out, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
