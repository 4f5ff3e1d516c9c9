package equilibrium

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"genodyn/internal/dynamics"
)

// Outer-loop constants for the augmented Lagrangian scheme.
const (
	maxOuterIterations = 25
	muInitial          = 10.0
	muGrowth           = 10.0
	// escapeObjective stands in for the objective wherever the motion map
	// cannot be evaluated; large and finite so line searches back away
	// instead of propagating NaN.
	escapeObjective = 1e8
)

// Minimizer searches for equilibria as the constrained least-squares problem
//
//	min 0.5*||F(X)-X||^2  s.t.  sum X[0:4] = 1, sum X[4:8] = 1,
//	                            eps <= X_i <= 1-eps
//
// solved by an augmented Lagrangian outer loop (multiplier updates for the
// two simplex sums, quadratic exterior penalties for the bounds) around
// unconstrained gonum inner minimizations with the analytic gradient.
type Minimizer struct {
	res *Residual
}

func NewMinimizer(sys dynamics.System, p dynamics.Params) *Minimizer {
	return &Minimizer{res: NewResidual(sys, p)}
}

func (m *Minimizer) Name() string { return "minimize" }

func (m *Minimizer) Solve(guess dynamics.State, cfg Config) (*Result, error) {
	if err := validateGuess(guess); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withMinimizeDefaults()
	method, err := innerMethod(cfg.Method)
	if err != nil {
		return nil, err
	}

	x := make([]float64, dynamics.Dim)
	copy(x, guess)

	var (
		lam       [2]float64
		mu        = muInitial
		prevViol  = math.Inf(1)
		iters     int
		funcEvals int
		converged bool
		message   string
	)

	for outer := 0; outer < maxOuterIterations; outer++ {
		problem := optimize.Problem{
			Func: func(v []float64) float64 {
				funcEvals++
				return m.lagrangian(v, lam, mu, cfg.Epsilon)
			},
			Grad: func(grad, v []float64) {
				m.lagrangianGrad(grad, v, lam, mu, cfg.Epsilon)
			},
		}
		settings := &optimize.Settings{
			MajorIterations:   cfg.MaxIterations,
			GradientThreshold: cfg.Tol,
		}

		r, innerErr := optimize.Minimize(problem, x, settings, method)
		if r == nil {
			message = fmt.Sprintf("inner solve failed: %v", innerErr)
			break
		}
		copy(x, r.X)
		iters += r.Stats.MajorIterations

		viol := constraintViolation(x, cfg.Epsilon)
		if innerConverged(r.Status, innerErr) && viol <= cfg.ConstraintTol {
			converged = true
			message = r.Status.String()
			break
		}

		c1, c2 := simplexGaps(x)
		lam[0] -= mu * c1
		lam[1] -= mu * c2
		if viol > 0.25*prevViol {
			mu *= muGrowth
		}
		prevViol = viol
		message = fmt.Sprintf("constraint violation %.3e after %d outer rounds", viol, outer+1)
	}

	result := &Result{
		State:      dynamics.State(x).Clone(),
		Success:    converged,
		Iterations: iters,
		FuncEvals:  funcEvals,
		Method:     "minimize/" + cfg.Method,
		Message:    message,
	}
	if obj, err := m.res.Objective(result.State); err == nil {
		result.Objective = obj
	} else {
		result.Objective = math.NaN()
		result.Success = false
		result.Message = err.Error()
	}
	if res, err := m.res.Eval(result.State); err == nil {
		result.ResidualNorm = normInf(res)
	} else {
		result.ResidualNorm = math.NaN()
	}
	return result, nil
}

// lagrangian evaluates the augmented Lagrangian at v. Points the motion map
// cannot handle are assigned escapeObjective plus the penalty terms, which
// keeps the inner solver inside the model domain.
func (m *Minimizer) lagrangian(v []float64, lam [2]float64, mu, eps float64) float64 {
	obj, err := m.res.Objective(dynamics.State(v))
	if err != nil || math.IsNaN(obj) {
		obj = escapeObjective
	}
	c1, c2 := simplexGaps(v)
	val := obj - lam[0]*c1 - lam[1]*c2 + 0.5*mu*(c1*c1+c2*c2)
	for _, xi := range v {
		if d := boundGap(xi, eps); d != 0 {
			val += 0.5 * mu * d * d
		}
	}
	return val
}

func (m *Minimizer) lagrangianGrad(grad, v []float64, lam [2]float64, mu, eps float64) {
	g, err := m.res.Gradient(dynamics.State(v))
	if err != nil {
		for i := range grad {
			grad[i] = 0
		}
	} else {
		copy(grad, g)
	}
	c1, c2 := simplexGaps(v)
	for j := 0; j < dynamics.NGenotypes; j++ {
		grad[j] += -lam[0] + mu*c1
		grad[dynamics.NGenotypes+j] += -lam[1] + mu*c2
	}
	for j := range v {
		if d := boundGap(v[j], eps); d != 0 {
			grad[j] += mu * d
		}
	}
}

// simplexGaps returns the two equality-constraint values sum(half) - 1.
func simplexGaps(v []float64) (c1, c2 float64) {
	for j := 0; j < dynamics.NGenotypes; j++ {
		c1 += v[j]
		c2 += v[dynamics.NGenotypes+j]
	}
	return c1 - 1, c2 - 1
}

// boundGap returns the signed distance by which x violates [eps, 1-eps],
// zero when inside.
func boundGap(x, eps float64) float64 {
	if x < eps {
		return x - eps
	}
	if x > 1-eps {
		return x - (1 - eps)
	}
	return 0
}

func constraintViolation(v []float64, eps float64) float64 {
	c1, c2 := simplexGaps(v)
	viol := math.Max(math.Abs(c1), math.Abs(c2))
	for _, xi := range v {
		if d := math.Abs(boundGap(xi, eps)); d > viol {
			viol = d
		}
	}
	return viol
}

func innerMethod(name string) (optimize.Method, error) {
	switch name {
	case "lbfgs":
		return &optimize.LBFGS{}, nil
	case "bfgs":
		return &optimize.BFGS{}, nil
	case "cg":
		return &optimize.CG{}, nil
	case "graddesc":
		return &optimize.GradientDescent{}, nil
	case "neldermead":
		return &optimize.NelderMead{}, nil
	default:
		return nil, fmt.Errorf("equilibrium: unknown minimize method %q (available: lbfgs, bfgs, cg, graddesc, neldermead): %w", name, dynamics.ErrInvalidArgument)
	}
}

// innerConverged treats any terminal status that reflects a satisfied
// stopping criterion as convergence; iteration and evaluation limits do not.
func innerConverged(st optimize.Status, err error) bool {
	switch st {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionThreshold,
		optimize.FunctionConvergence, optimize.StepConvergence, optimize.MethodConverge:
		return err == nil
	default:
		return false
	}
}
