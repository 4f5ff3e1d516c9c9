package equilibrium

import (
	"fmt"
	"math"

	"genodyn/internal/dynamics"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultTol             = 1e-10
	DefaultMaxIterations   = 200
	DefaultInnerIterations = 250
	DefaultEpsilon         = 1e-15
	DefaultConstraintTol   = 1e-8
)

// Config tunes a single equilibrium search. Zero values take the package
// defaults above.
type Config struct {
	// Method selects the algorithm within a strategy: an inner optimizer
	// for the minimizer (lbfgs, bfgs, cg, graddesc, neldermead) or the
	// iteration scheme for the root finder (newton, broyden).
	Method string

	// Tol is the acceptance tolerance: ||R||_inf for the root finder, the
	// gradient threshold of the inner solves for the minimizer.
	Tol float64

	// MaxIterations caps root-finder iterations, or iterations per inner
	// minimization.
	MaxIterations int

	// UseJacobian selects the analytic residual Jacobian. When false the
	// newton scheme differentiates numerically at every iterate and the
	// broyden scheme maintains a secant approximation.
	UseJacobian bool

	// Epsilon insets the minimizer's box bounds to [Epsilon, 1-Epsilon].
	Epsilon float64

	// ConstraintTol bounds the simplex-sum violation the minimizer accepts.
	ConstraintTol float64
}

func (c Config) validate() error {
	if c.Tol < 0 || c.MaxIterations < 0 || c.Epsilon < 0 || c.ConstraintTol < 0 {
		return fmt.Errorf("equilibrium: negative tolerance or iteration cap: %w", dynamics.ErrInvalidArgument)
	}
	return nil
}

func (c Config) withRootDefaults() Config {
	if c.Method == "" {
		c.Method = "newton"
	}
	if c.Tol == 0 {
		c.Tol = DefaultTol
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	return c
}

func (c Config) withMinimizeDefaults() Config {
	if c.Method == "" {
		c.Method = "lbfgs"
	}
	if c.Tol == 0 {
		c.Tol = DefaultTol
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultInnerIterations
	}
	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
	if c.ConstraintTol == 0 {
		c.ConstraintTol = DefaultConstraintTol
	}
	return c
}

// Result records the outcome of one equilibrium search. A search that ran to
// completion without finding an equilibrium is not an error: it is reported
// here with Success=false, and only malformed inputs surface as errors.
type Result struct {
	State        dynamics.State
	Success      bool
	Objective    float64
	ResidualNorm float64
	Iterations   int
	FuncEvals    int
	Method       string
	Message      string
}

// AtRoot reports whether the search both succeeded and drove the objective
// within tol of zero. This is the acceptance test for a genuine equilibrium:
// a converged minimization stuck at a positive local minimum fails it.
func (r *Result) AtRoot(tol float64) bool {
	return r != nil && r.Success && r.State.IsValid() && r.Objective <= tol
}

func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	status := "failed"
	if r.Success {
		status = "converged"
	}
	return fmt.Sprintf("%s [%s] objective=%.3e resid=%.3e iters=%d", status, r.Method, r.Objective, r.ResidualNorm, r.Iterations)
}

func normInf(v dynamics.State) float64 {
	max := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > max {
			max = a
		}
	}
	return max
}
