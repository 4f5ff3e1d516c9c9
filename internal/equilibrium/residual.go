package equilibrium

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"genodyn/internal/dynamics"
)

// DefaultSlack bounds how far outside [0, 1] a state component may drift
// before the residual layer refuses to evaluate the motion map.
const DefaultSlack = 1e-3

// Residual turns the motion map into root-finding form. It binds the
// collaborator and parameters at construction and derives the four
// quantities the solver strategies consume:
//
//	Eval       R(X) = F(X) - X
//	Jacobian   dF/dX - I
//	Objective  0.5 * sum R_i^2
//	Gradient   J_R^T R
type Residual struct {
	sys   dynamics.System
	p     dynamics.Params
	slack float64
}

func NewResidual(sys dynamics.System, p dynamics.Params) *Residual {
	return &Residual{sys: sys, p: p, slack: DefaultSlack}
}

// WithSlack returns a copy of r using a different domain slack.
func (r *Residual) WithSlack(slack float64) *Residual {
	c := *r
	c.slack = slack
	return &c
}

func (r *Residual) checkDomain(x dynamics.State) error {
	if len(x) != dynamics.Dim {
		return fmt.Errorf("equilibrium: state has length %d, want %d: %w", len(x), dynamics.Dim, dynamics.ErrInvalidArgument)
	}
	for i, v := range x {
		if math.IsNaN(v) || v < -r.slack || v > 1+r.slack {
			return &dynamics.DomainError{Index: i, Value: v, Slack: r.slack}
		}
	}
	return nil
}

// Eval computes R(X) = F(X) - X.
func (r *Residual) Eval(x dynamics.State) (dynamics.State, error) {
	if err := r.checkDomain(x); err != nil {
		return nil, err
	}
	fx := r.sys.Motion(x, r.p)
	res := make(dynamics.State, dynamics.Dim)
	for i := range res {
		res[i] = fx[i] - x[i]
	}
	return res, nil
}

// Jacobian computes dF/dX - I. The returned matrix is owned by the caller.
func (r *Residual) Jacobian(x dynamics.State) (*mat.Dense, error) {
	if err := r.checkDomain(x); err != nil {
		return nil, err
	}
	j := r.sys.MotionJacobian(x, r.p)
	for i := 0; i < dynamics.Dim; i++ {
		j.Set(i, i, j.At(i, i)-1)
	}
	return j, nil
}

// Objective computes the least-squares merit 0.5 * ||R(X)||^2.
func (r *Residual) Objective(x dynamics.State) (float64, error) {
	res, err := r.Eval(x)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range res {
		sum += v * v
	}
	return 0.5 * sum, nil
}

// Gradient computes the objective gradient J_R^T R.
func (r *Residual) Gradient(x dynamics.State) ([]float64, error) {
	res, err := r.Eval(x)
	if err != nil {
		return nil, err
	}
	jr, err := r.Jacobian(x)
	if err != nil {
		return nil, err
	}
	var grad mat.VecDense
	grad.MulVec(jr.T(), mat.NewVecDense(dynamics.Dim, res))
	out := make([]float64, dynamics.Dim)
	copy(out, grad.RawVector().Data)
	return out, nil
}
