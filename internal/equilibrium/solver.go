package equilibrium

import (
	"fmt"

	"genodyn/internal/dynamics"
)

// Strategy is one equilibrium-search algorithm bound to a motion map and
// parameter set. Solve reports a search that failed to converge through
// Result.Success; the error return is reserved for malformed input.
type Strategy interface {
	Name() string
	Solve(guess dynamics.State, cfg Config) (*Result, error)
}

// NewStrategy builds the named strategy. Available: "minimize" (constrained
// least squares) and "root" (direct root-finding).
func NewStrategy(name string, sys dynamics.System, p dynamics.Params) (Strategy, error) {
	switch name {
	case "minimize":
		return NewMinimizer(sys, p), nil
	case "root":
		return NewRootFinder(sys, p), nil
	default:
		return nil, fmt.Errorf("equilibrium: unknown strategy %q (available: minimize, root): %w", name, dynamics.ErrInvalidArgument)
	}
}

func validateGuess(guess dynamics.State) error {
	if len(guess) != dynamics.Dim {
		return fmt.Errorf("equilibrium: guess has length %d, want %d: %w", len(guess), dynamics.Dim, dynamics.ErrInvalidArgument)
	}
	if !guess.IsValid() {
		return fmt.Errorf("equilibrium: guess contains NaN or Inf: %w", dynamics.ErrInvalidArgument)
	}
	return nil
}
