package simulate

import (
	"fmt"
	"math"

	"genodyn/internal/dynamics"
)

// InitialFromState validates x and returns an independent copy of it.
func InitialFromState(x dynamics.State) (dynamics.State, error) {
	s, err := dynamics.NewState(x)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	if !s.IsValid() {
		return nil, fmt.Errorf("simulate: initial state contains NaN or Inf: %w", dynamics.ErrInvalidArgument)
	}
	return s, nil
}

// IsolatedSubpopulations builds the classic two-island initial condition: a
// GA subpopulation of male share m0 and a ga subpopulation of share 1-m0,
// with no mixed genotypes. Each island's females start at the offspring
// tally its payoff sustains, c*Pi per mother, so the female half is
// count-valued rather than normalized. The motion map normalizes female
// shares internally, which makes that legal.
func IsolatedSubpopulations(m0 float64, p dynamics.Params) (dynamics.State, error) {
	if math.IsNaN(m0) || m0 <= 0 || m0 >= 1 {
		return nil, fmt.Errorf("simulate: m0 = %v, want 0 < m0 < 1: %w", m0, dynamics.ErrInvalidArgument)
	}
	c := p.C()
	return dynamics.State{
		m0, 0, 0, 1 - m0,
		c * p.Get("PiAA") * m0, 0, 0, c * p.Get("Piaa") * (1 - m0),
	}, nil
}
