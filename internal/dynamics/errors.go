package dynamics

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the solver and simulator packages.
var (
	// ErrDomain indicates a state component left the guarded model domain.
	ErrDomain = errors.New("dynamics: state outside model domain")

	// ErrInvalidArgument indicates malformed caller input.
	ErrInvalidArgument = errors.New("dynamics: invalid argument")

	// ErrPrecondition indicates an operation invoked on an unsuitable input.
	ErrPrecondition = errors.New("dynamics: precondition not met")

	// ErrNonConvergence indicates an iteration cap was exhausted before the
	// stopping rule held.
	ErrNonConvergence = errors.New("dynamics: iteration cap exhausted")
)

// DomainError identifies the state component that violated the domain guard.
type DomainError struct {
	Index int
	Value float64
	Slack float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("dynamics: state[%d] = %g outside [%g, %g]", e.Index, e.Value, -e.Slack, 1+e.Slack)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// PreconditionError reports why an operation refused its input.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("dynamics: %s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// NonConvergenceError reports an exhausted iteration cap.
type NonConvergenceError struct {
	Steps    int
	MaxSteps int
	Delta    float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("dynamics: no convergence after %d steps (cap %d, last delta %.3e)", e.Steps, e.MaxSteps, e.Delta)
}

func (e *NonConvergenceError) Unwrap() error { return ErrNonConvergence }

// StepError wraps an error with the trajectory step at which it occurred.
type StepError struct {
	Step    int
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }
