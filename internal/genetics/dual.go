package genetics

import "genodyn/internal/dynamics"

// dual carries a value together with its partial derivatives with respect to
// the eight state components. Running the matching arithmetic over duals
// yields the exact Jacobian of the map in one pass, with no symbolic engine
// and no finite differences.
type dual struct {
	v float64
	d [dynamics.Dim]float64
}

func con(v float64) dual { return dual{v: v} }

// seed returns the i-th input variable: value v, unit derivative in slot i.
func seed(v float64, i int) dual {
	x := dual{v: v}
	x.d[i] = 1
	return x
}

func (a dual) add(b dual) dual {
	r := dual{v: a.v + b.v}
	for i := range r.d {
		r.d[i] = a.d[i] + b.d[i]
	}
	return r
}

func (a dual) mul(b dual) dual {
	r := dual{v: a.v * b.v}
	for i := range r.d {
		r.d[i] = a.d[i]*b.v + a.v*b.d[i]
	}
	return r
}

// div computes a/b. The quotient rule is applied as (a' - (a/b) b') / b,
// which stays stable when both value and derivative are small.
func (a dual) div(b dual) dual {
	inv := 1 / b.v
	r := dual{v: a.v * inv}
	for i := range r.d {
		r.d[i] = (a.d[i] - r.v*b.d[i]) * inv
	}
	return r
}

func (a dual) scale(k float64) dual {
	r := dual{v: a.v * k}
	for i := range r.d {
		r.d[i] = a.d[i] * k
	}
	return r
}
