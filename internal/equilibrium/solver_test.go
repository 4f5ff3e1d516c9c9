package equilibrium

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"genodyn/internal/dynamics"
)

// affineSystem contracts toward (or expands away from) a chosen fixed point
// with uniform rate rho: F(x) = x* + rho*(x - x*). Its Jacobian is rho*I, so
// fixed point, spectrum, and Newton behavior are all known exactly.
type affineSystem struct {
	fixed dynamics.State
	rho   float64
}

func (s affineSystem) Motion(x dynamics.State, _ dynamics.Params) dynamics.State {
	out := make(dynamics.State, dynamics.Dim)
	for i := range out {
		out[i] = s.fixed[i] + s.rho*(x[i]-s.fixed[i])
	}
	return out
}

func (s affineSystem) MotionJacobian(_ dynamics.State, _ dynamics.Params) *mat.Dense {
	j := mat.NewDense(dynamics.Dim, dynamics.Dim, nil)
	for i := 0; i < dynamics.Dim; i++ {
		j.Set(i, i, s.rho)
	}
	return j
}

var (
	affineFixed = dynamics.State{0.4, 0.3, 0.2, 0.1, 0.1, 0.2, 0.3, 0.4}
	affineGuess = dynamics.State{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}
)

func testParams(t *testing.T) dynamics.Params {
	t.Helper()
	p, err := dynamics.NewParams(map[string]float64{
		"dA": 0.5, "da": 0.5, "eA": 0.2, "ea": 0.2,
		"PiaA": 6.0, "PiAA": 5.0, "Piaa": 4.0, "PiAa": 3.0,
	})
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func TestNewStrategy(t *testing.T) {
	sys := affineSystem{fixed: affineFixed, rho: 0.5}
	p := testParams(t)

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"minimize", "minimize", false},
		{"root", "root", false},
		{"hybr", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run("name="+tt.name, func(t *testing.T) {
			s, err := NewStrategy(tt.name, sys, p)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, dynamics.ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.want)
			}
		})
	}
}

func TestRootFinder_AffineConverges(t *testing.T) {
	sys := affineSystem{fixed: affineFixed, rho: 0.5}
	rf := NewRootFinder(sys, testParams(t))

	for _, method := range []string{"newton", "broyden"} {
		t.Run(method, func(t *testing.T) {
			r, err := rf.Solve(affineGuess, Config{Method: method, Tol: 1e-12, UseJacobian: true})
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if !r.Success {
				t.Fatalf("Success = false: %s", r.Message)
			}
			if !r.AtRoot(1e-12) {
				t.Errorf("AtRoot = false, objective %v", r.Objective)
			}
			if d := r.State.MaxAbsDiff(affineFixed); d > 1e-9 {
				t.Errorf("state off fixed point by %v", d)
			}
			if r.Iterations > 25 {
				t.Errorf("took %d iterations on an affine system", r.Iterations)
			}
		})
	}
}

func TestSolve_InvalidInputs(t *testing.T) {
	sys := affineSystem{fixed: affineFixed, rho: 0.5}
	p := testParams(t)

	strategies := []Strategy{NewRootFinder(sys, p), NewMinimizer(sys, p)}
	for _, strat := range strategies {
		t.Run(strat.Name(), func(t *testing.T) {
			if _, err := strat.Solve(dynamics.State{1, 2}, Config{}); !errors.Is(err, dynamics.ErrInvalidArgument) {
				t.Errorf("short guess: error = %v, want ErrInvalidArgument", err)
			}

			bad := affineGuess.Clone()
			bad[3] = math.NaN()
			if _, err := strat.Solve(bad, Config{}); !errors.Is(err, dynamics.ErrInvalidArgument) {
				t.Errorf("NaN guess: error = %v, want ErrInvalidArgument", err)
			}

			if _, err := strat.Solve(affineGuess, Config{Tol: -1}); !errors.Is(err, dynamics.ErrInvalidArgument) {
				t.Errorf("negative tol: error = %v, want ErrInvalidArgument", err)
			}

			if _, err := strat.Solve(affineGuess, Config{Method: "simplex"}); !errors.Is(err, dynamics.ErrInvalidArgument) {
				t.Errorf("unknown method: error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestMinimizer_AffineConverges(t *testing.T) {
	sys := affineSystem{fixed: affineFixed, rho: 0.5}
	m := NewMinimizer(sys, testParams(t))

	for _, method := range []string{"lbfgs", "bfgs"} {
		t.Run(method, func(t *testing.T) {
			r, err := m.Solve(affineGuess, Config{Method: method})
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if !r.Success {
				t.Fatalf("Success = false: %s", r.Message)
			}
			if !r.AtRoot(1e-10) {
				t.Errorf("AtRoot = false, objective %v", r.Objective)
			}
			if d := r.State.MaxAbsDiff(affineFixed); d > 1e-5 {
				t.Errorf("state off fixed point by %v", d)
			}
			if !r.State.OnSimplex(1e-6) {
				male, female := r.State.Sums()
				t.Errorf("solution sums = (%v, %v), want (1, 1)", male, female)
			}
		})
	}
}
