package equilibrium

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"genodyn/internal/dynamics"
)

// RootFinder solves R(X) = 0 directly. The newton scheme takes damped Newton
// steps from the residual Jacobian with a backtracking line search on
// ||R||^2, falling back to Levenberg-Marquardt damping when the Jacobian is
// singular (the map has neutral directions at some parameter sets, e.g.
// random signaling makes the screening locus invisible to selection). The
// broyden scheme keeps a secant approximation instead, for operation without
// the analytic Jacobian.
type RootFinder struct {
	res *Residual
}

func NewRootFinder(sys dynamics.System, p dynamics.Params) *RootFinder {
	return &RootFinder{res: NewResidual(sys, p)}
}

func (rf *RootFinder) Name() string { return "root" }

func (rf *RootFinder) Solve(guess dynamics.State, cfg Config) (*Result, error) {
	if err := validateGuess(guess); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withRootDefaults()
	if cfg.Method != "newton" && cfg.Method != "broyden" {
		return nil, fmt.Errorf("equilibrium: unknown root method %q (available: newton, broyden): %w", cfg.Method, dynamics.ErrInvalidArgument)
	}

	x := guess.Clone()
	res, err := rf.res.Eval(x)
	if err != nil {
		return nil, err
	}
	funcEvals := 1
	method := "root/" + cfg.Method

	var secant *mat.Dense
	if cfg.Method == "broyden" {
		secant = rf.numericalJacobian(x)
		funcEvals += 2 * dynamics.Dim
	}

	result := func(k int, success bool, message string) *Result {
		return &Result{
			State:        x.Clone(),
			Success:      success,
			Objective:    0.5 * floats.Dot(res, res),
			ResidualNorm: normInf(res),
			Iterations:   k,
			FuncEvals:    funcEvals,
			Method:       method,
			Message:      message,
		}
	}

	for k := 0; k < cfg.MaxIterations; k++ {
		if normInf(res) <= cfg.Tol {
			return result(k, true, "converged"), nil
		}

		var jac *mat.Dense
		switch {
		case cfg.Method == "broyden":
			jac = secant
		case cfg.UseJacobian:
			jac, err = rf.res.Jacobian(x)
			if err != nil {
				return result(k, false, err.Error()), nil
			}
		default:
			jac = rf.numericalJacobian(x)
			funcEvals += 2 * dynamics.Dim
		}

		var (
			xNew, resNew dynamics.State
			accepted     bool
		)
		if delta, solveErr := newtonStep(jac, res); solveErr == nil {
			var evals int
			xNew, resNew, evals, accepted = rf.lineSearch(x, delta, res)
			funcEvals += evals
		}
		if !accepted {
			scale := mat.Norm(jac, 2)
			scale = scale*scale/dynamics.Dim + 1
			for lam := 1e-8 * scale; lam <= 1e4*scale; lam *= 100 {
				delta, solveErr := lmStep(jac, res, lam)
				if solveErr != nil {
					continue
				}
				var evals int
				xNew, resNew, evals, accepted = rf.lineSearch(x, delta, res)
				funcEvals += evals
				if accepted {
					break
				}
			}
		}
		if !accepted {
			return result(k, false, "step search stalled"), nil
		}

		if cfg.Method == "broyden" {
			updateSecant(secant, xNew.Sub(x), resNew.Sub(res))
		}
		x, res = xNew, resNew
	}
	if normInf(res) <= cfg.Tol {
		return result(cfg.MaxIterations, true, "converged"), nil
	}
	return result(cfg.MaxIterations, false, "iteration limit reached"), nil
}

// lineSearch backtracks along delta until the residual merit decreases and
// the trial point stays inside the model domain.
func (rf *RootFinder) lineSearch(x dynamics.State, delta []float64, res dynamics.State) (dynamics.State, dynamics.State, int, bool) {
	merit := 0.5 * floats.Dot(res, res)
	evals := 0
	for alpha := 1.0; alpha >= 1e-12; alpha /= 2 {
		trial := make(dynamics.State, dynamics.Dim)
		for i := range trial {
			trial[i] = x[i] + alpha*delta[i]
		}
		rTrial, err := rf.res.Eval(trial)
		evals++
		if err != nil {
			continue
		}
		if 0.5*floats.Dot(rTrial, rTrial) <= merit*(1-1e-4*alpha) {
			return trial, rTrial, evals, true
		}
	}
	return nil, nil, evals, false
}

func (rf *RootFinder) numericalJacobian(x dynamics.State) *mat.Dense {
	dst := mat.NewDense(dynamics.Dim, dynamics.Dim, nil)
	fd.Jacobian(dst, func(y, v []float64) {
		r, err := rf.res.Eval(v)
		if err != nil {
			for i := range y {
				y[i] = math.NaN()
			}
			return
		}
		copy(y, r)
	}, x, &fd.JacobianSettings{Formula: fd.Central})
	return dst
}

func newtonStep(jac *mat.Dense, res dynamics.State) ([]float64, error) {
	var lu mat.LU
	lu.Factorize(jac)
	rhs := mat.NewVecDense(dynamics.Dim, nil)
	for i, v := range res {
		rhs.SetVec(i, -v)
	}
	var delta mat.VecDense
	if err := lu.SolveVecTo(&delta, false, rhs); err != nil {
		return nil, err
	}
	out := make([]float64, dynamics.Dim)
	copy(out, delta.RawVector().Data)
	return out, nil
}

// lmStep solves the damped normal equations (J^T J + lambda I) d = -J^T R.
func lmStep(jac *mat.Dense, res dynamics.State, lambda float64) ([]float64, error) {
	a := mat.NewDense(dynamics.Dim, dynamics.Dim, nil)
	a.Mul(jac.T(), jac)
	for i := 0; i < dynamics.Dim; i++ {
		a.Set(i, i, a.At(i, i)+lambda)
	}
	var jtr mat.VecDense
	jtr.MulVec(jac.T(), mat.NewVecDense(dynamics.Dim, res))
	rhs := mat.NewVecDense(dynamics.Dim, nil)
	for i := 0; i < dynamics.Dim; i++ {
		rhs.SetVec(i, -jtr.AtVec(i))
	}
	var lu mat.LU
	lu.Factorize(a)
	var delta mat.VecDense
	if err := lu.SolveVecTo(&delta, false, rhs); err != nil {
		return nil, err
	}
	out := make([]float64, dynamics.Dim)
	copy(out, delta.RawVector().Data)
	return out, nil
}

// updateSecant applies Broyden's rank-one update B += (dR - B dx) dx^T / (dx . dx).
func updateSecant(b *mat.Dense, dx, dres dynamics.State) {
	den := floats.Dot(dx, dx)
	if den == 0 {
		return
	}
	dxVec := mat.NewVecDense(dynamics.Dim, dx)
	var bdx mat.VecDense
	bdx.MulVec(b, dxVec)
	num := mat.NewVecDense(dynamics.Dim, nil)
	for i := 0; i < dynamics.Dim; i++ {
		num.SetVec(i, dres[i]-bdx.AtVec(i))
	}
	b.RankOne(b, 1/den, num, dxVec)
}
