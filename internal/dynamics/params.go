package dynamics

import (
	"fmt"
	"math"
	"sort"
)

// Probability-valued and payoff-valued parameter names required by the
// family-matching model. "c" (female offspring scale) is optional and
// defaults to 1.
var (
	probParams   = [...]string{"dA", "da", "eA", "ea"}
	payoffParams = [...]string{"PiaA", "PiAA", "Piaa", "PiAa"}
)

// Params is an immutable set of named model coefficients. Construct with
// [NewParams]; derive variants with [Params.With]. Solvers and simulators
// bind a Params at construction, so swapping coefficients always means
// building a new instance and nothing downstream can hold a stale value.
type Params struct {
	vals map[string]float64
}

// NewParams validates and copies vals. The four signal/screening
// probabilities must lie in [0, 1], the four payoffs must be positive, and
// unknown names are rejected.
func NewParams(vals map[string]float64) (Params, error) {
	m := make(map[string]float64, len(vals))
	for k, v := range vals {
		m[k] = v
	}
	for _, k := range probParams {
		v, ok := m[k]
		if !ok {
			return Params{}, fmt.Errorf("dynamics: missing parameter %q: %w", k, ErrInvalidArgument)
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return Params{}, fmt.Errorf("dynamics: parameter %q = %v outside [0, 1]: %w", k, v, ErrInvalidArgument)
		}
	}
	for _, k := range payoffParams {
		v, ok := m[k]
		if !ok {
			return Params{}, fmt.Errorf("dynamics: missing parameter %q: %w", k, ErrInvalidArgument)
		}
		if !(v > 0) || math.IsInf(v, 0) {
			return Params{}, fmt.Errorf("dynamics: parameter %q = %v must be positive and finite: %w", k, v, ErrInvalidArgument)
		}
	}
	if c, ok := m["c"]; ok && (!(c > 0) || math.IsInf(c, 0)) {
		return Params{}, fmt.Errorf("dynamics: parameter \"c\" = %v must be positive and finite: %w", c, ErrInvalidArgument)
	}
	for k := range m {
		if !knownParam(k) {
			return Params{}, fmt.Errorf("dynamics: unknown parameter %q: %w", k, ErrInvalidArgument)
		}
	}
	return Params{vals: m}, nil
}

// MustParams is NewParams for literals in presets and tests.
func MustParams(vals map[string]float64) Params {
	p, err := NewParams(vals)
	if err != nil {
		panic(err)
	}
	return p
}

func knownParam(name string) bool {
	for _, k := range probParams {
		if k == name {
			return true
		}
	}
	for _, k := range payoffParams {
		if k == name {
			return true
		}
	}
	return name == "c"
}

// Get returns the named coefficient, or 0 for a name the set does not hold.
// Required names always hold a validated value.
func (p Params) Get(name string) float64 { return p.vals[name] }

func (p Params) Has(name string) bool {
	_, ok := p.vals[name]
	return ok
}

// C returns the female offspring scale, defaulting to 1 when unset.
func (p Params) C() float64 {
	if c, ok := p.vals["c"]; ok {
		return c
	}
	return 1
}

// With returns a copy with one coefficient replaced, revalidated.
func (p Params) With(name string, value float64) (Params, error) {
	m := make(map[string]float64, len(p.vals)+1)
	for k, v := range p.vals {
		m[k] = v
	}
	m[name] = value
	return NewParams(m)
}

// Names returns the held coefficient names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p.vals))
	for k := range p.vals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the coefficients for serialization.
func (p Params) Map() map[string]float64 {
	m := make(map[string]float64, len(p.vals))
	for k, v := range p.vals {
		m[k] = v
	}
	return m
}
