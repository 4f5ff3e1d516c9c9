package simulate

import (
	"context"
	"fmt"
	"math"

	"genodyn/internal/dynamics"
)

// DefaultMaxSteps caps variable-length runs that never settle.
const DefaultMaxSteps = 50000

// Config selects the stopping rule for one run. Exactly one of Steps and
// RTol must be positive; when both are, the fixed length wins.
type Config struct {
	// Steps fixes the trajectory length: the initial state followed by
	// Steps-1 generations.
	Steps int

	// RTol ends the run once no component moved by more than RTol across
	// one generation.
	RTol float64

	// MaxSteps caps RTol runs. Zero means DefaultMaxSteps.
	MaxSteps int
}

func (c Config) validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("simulate: Steps = %d, want >= 0: %w", c.Steps, dynamics.ErrInvalidArgument)
	}
	if c.RTol < 0 || math.IsNaN(c.RTol) {
		return fmt.Errorf("simulate: RTol = %v, want >= 0: %w", c.RTol, dynamics.ErrInvalidArgument)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("simulate: MaxSteps = %d, want >= 0: %w", c.MaxSteps, dynamics.ErrInvalidArgument)
	}
	return nil
}

// Trajectory is an ordered run of generations, the initial state first.
type Trajectory struct {
	States []dynamics.State

	// Converged reports that an RTol run settled before its cap. Fixed
	// length runs leave it false: they make no claim about settling.
	Converged bool

	// FinalDelta is the max componentwise change of the last generation
	// taken, NaN when no generation ran.
	FinalDelta float64
}

func (tr *Trajectory) Len() int { return len(tr.States) }

func (tr *Trajectory) Last() dynamics.State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Series extracts component i across all states, for plotting and export.
func (tr *Trajectory) Series(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		out[k] = s[i]
	}
	return out
}

// Simulator iterates the motion map of one system under fixed parameters.
type Simulator struct {
	sys dynamics.System
	p   dynamics.Params
}

func New(sys dynamics.System, p dynamics.Params) *Simulator {
	return &Simulator{sys: sys, p: p}
}

// Run iterates the map from x0 under cfg's stopping rule. The returned
// trajectory always includes x0, also on error: context cancellation, a
// domain exit (wrapped ErrDomain with the step index) and an exhausted
// RTol cap (NonConvergenceError) all return the generations produced so
// far alongside the error.
func (s *Simulator) Run(ctx context.Context, x0 dynamics.State, cfg Config) (*Trajectory, error) {
	if len(x0) != dynamics.Dim {
		return nil, fmt.Errorf("simulate: initial state has length %d, want %d: %w", len(x0), dynamics.Dim, dynamics.ErrInvalidArgument)
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("simulate: initial state contains NaN or Inf: %w", dynamics.ErrInvalidArgument)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	switch {
	case cfg.Steps > 0:
		return s.runFixed(ctx, x0, cfg.Steps)
	case cfg.RTol > 0:
		maxSteps := cfg.MaxSteps
		if maxSteps == 0 {
			maxSteps = DefaultMaxSteps
		}
		return s.runSettle(ctx, x0, cfg.RTol, maxSteps)
	default:
		return nil, fmt.Errorf("simulate: config sets neither Steps nor RTol: %w", dynamics.ErrInvalidArgument)
	}
}

func (s *Simulator) runFixed(ctx context.Context, x0 dynamics.State, steps int) (*Trajectory, error) {
	tr := &Trajectory{
		States:     make([]dynamics.State, 0, steps),
		FinalDelta: math.NaN(),
	}
	x := x0.Clone()
	tr.States = append(tr.States, x.Clone())

	for i := 1; i < steps; i++ {
		select {
		case <-ctx.Done():
			return tr, ctx.Err()
		default:
		}

		next := s.sys.Motion(x, s.p)
		if !next.IsValid() {
			return tr, &dynamics.StepError{Step: i, State: next, Wrapped: dynamics.ErrDomain}
		}
		tr.FinalDelta = next.MaxAbsDiff(x)
		x = next
		tr.States = append(tr.States, x.Clone())
	}
	return tr, nil
}

func (s *Simulator) runSettle(ctx context.Context, x0 dynamics.State, rtol float64, maxSteps int) (*Trajectory, error) {
	tr := &Trajectory{
		States:     make([]dynamics.State, 0, 64),
		FinalDelta: math.NaN(),
	}
	x := x0.Clone()
	tr.States = append(tr.States, x.Clone())

	for i := 1; i <= maxSteps; i++ {
		select {
		case <-ctx.Done():
			return tr, ctx.Err()
		default:
		}

		next := s.sys.Motion(x, s.p)
		if !next.IsValid() {
			return tr, &dynamics.StepError{Step: i, State: next, Wrapped: dynamics.ErrDomain}
		}
		delta := next.MaxAbsDiff(x)
		tr.FinalDelta = delta
		x = next
		tr.States = append(tr.States, x.Clone())

		if delta <= rtol {
			tr.Converged = true
			return tr, nil
		}
	}
	return tr, &dynamics.NonConvergenceError{Steps: maxSteps, MaxSteps: maxSteps, Delta: tr.FinalDelta}
}
