package stability

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/mat"

	"genodyn/internal/dynamics"
	"genodyn/internal/equilibrium"
	"genodyn/internal/genetics"
)

// linearSystem moves states by a fixed matrix around a fixed point, so its
// Jacobian and spectrum are known exactly.
type linearSystem struct {
	fixed dynamics.State
	a     *mat.Dense
}

func (s linearSystem) Motion(x dynamics.State, _ dynamics.Params) dynamics.State {
	diff := mat.NewVecDense(dynamics.Dim, x.Sub(s.fixed))
	var moved mat.VecDense
	moved.MulVec(s.a, diff)

	out := s.fixed.Clone()
	for i := range out {
		out[i] += moved.AtVec(i)
	}
	return out
}

func (s linearSystem) MotionJacobian(dynamics.State, dynamics.Params) *mat.Dense {
	out := mat.NewDense(dynamics.Dim, dynamics.Dim, nil)
	out.Copy(s.a)
	return out
}

func diagSystem(entries ...float64) linearSystem {
	if len(entries) != dynamics.Dim {
		panic("diagSystem needs one entry per dimension")
	}
	a := mat.NewDense(dynamics.Dim, dynamics.Dim, nil)
	for i, v := range entries {
		a.Set(i, i, v)
	}
	return linearSystem{
		fixed: dynamics.State{0.4, 0.3, 0.2, 0.1, 0.1, 0.2, 0.3, 0.4},
		a:     a,
	}
}

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

func TestClassifyState_KnownSpectra(t *testing.T) {
	tests := []struct {
		name       string
		sys        linearSystem
		wantRadius float64
		wantStable bool
	}{
		{"contracting", diagSystem(0.5, 0.25, -0.7, 0.1, 0.2, 0.05, -0.3, 0.6), 0.7, true},
		{"expanding", diagSystem(0.5, 0.25, 1.5, 0.1, 0.2, 0.05, -0.3, 0.6), 1.5, false},
		{"unit circle", diagSystem(1.0, 0.5, 0.25, 0.1, 0.2, 0.05, -0.3, 0.6), 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ClassifyState(tt.sys, testParams(t), tt.sys.fixed)
			if err != nil {
				t.Fatalf("ClassifyState: %v", err)
			}
			if len(v.Eigenvalues) != dynamics.Dim {
				t.Fatalf("got %d eigenvalues, want %d", len(v.Eigenvalues), dynamics.Dim)
			}
			if math.Abs(v.SpectralRadius-tt.wantRadius) > 1e-10 {
				t.Errorf("SpectralRadius = %v, want %v", v.SpectralRadius, tt.wantRadius)
			}
			if v.Stable != tt.wantStable {
				t.Errorf("Stable = %v, want %v", v.Stable, tt.wantStable)
			}
		})
	}
}

func TestClassifyState_ComplexPair(t *testing.T) {
	// A rotation-scaling block contributes the conjugate pair 0.3 +/- 0.4i,
	// both of modulus 0.5.
	sys := diagSystem(0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1)
	sys.a.Set(0, 0, 0.3)
	sys.a.Set(0, 1, -0.4)
	sys.a.Set(1, 0, 0.4)
	sys.a.Set(1, 1, 0.3)

	v, err := ClassifyState(sys, testParams(t), sys.fixed)
	if err != nil {
		t.Fatalf("ClassifyState: %v", err)
	}
	if math.Abs(v.SpectralRadius-0.5) > 1e-10 {
		t.Errorf("SpectralRadius = %v, want 0.5", v.SpectralRadius)
	}
	if !v.Stable {
		t.Error("Stable = false for spectrum inside the unit circle")
	}
	lead := v.Eigenvalues[0]
	if math.Abs(real(lead)-0.3) > 1e-10 || math.Abs(math.Abs(imag(lead))-0.4) > 1e-10 {
		t.Errorf("leading eigenvalue = %v, want 0.3 +/- 0.4i", lead)
	}
}

func TestClassify_RequiresConvergedResult(t *testing.T) {
	sys := diagSystem(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5)

	for _, eq := range []*equilibrium.Result{nil, {Success: false}} {
		_, err := Classify(sys, testParams(t), eq)
		if !errors.Is(err, dynamics.ErrPrecondition) {
			t.Errorf("Classify(%v) error = %v, want precondition failure", eq, err)
		}
		var pe *dynamics.PreconditionError
		if !errors.As(err, &pe) {
			t.Errorf("Classify(%v) error is not a PreconditionError", eq)
		}
	}
}

func TestClassifyState_Validation(t *testing.T) {
	sys := genetics.NewFamily()
	p := testParams(t)

	if _, err := ClassifyState(sys, p, dynamics.State{0.5, 0.5}); !errors.Is(err, dynamics.ErrInvalidArgument) {
		t.Errorf("short state error = %v, want invalid argument", err)
	}

	nan := make(dynamics.State, dynamics.Dim)
	nan[5] = math.NaN()
	if _, err := ClassifyState(sys, p, nan); !errors.Is(err, dynamics.ErrInvalidArgument) {
		t.Errorf("NaN state error = %v, want invalid argument", err)
	}

	// All-zero populations have no defined next generation.
	zero := make(dynamics.State, dynamics.Dim)
	if _, err := ClassifyState(sys, p, zero); !errors.Is(err, dynamics.ErrDomain) {
		t.Errorf("zero state error = %v, want domain error", err)
	}
}

func TestClassify_GeneticsEquilibrium(t *testing.T) {
	sys := genetics.NewFamily()
	p := testParams(t)

	rf := equilibrium.NewRootFinder(sys, p)
	guess := dynamics.State{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}
	r, err := rf.Solve(guess, equilibrium.Config{Tol: 1e-12, MaxIterations: 500, UseJacobian: true})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !r.Success {
		t.Fatalf("search failed: %s", r.Message)
	}

	v, err := Classify(sys, p, r)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(v.Eigenvalues) != dynamics.Dim {
		t.Fatalf("got %d eigenvalues, want %d", len(v.Eigenvalues), dynamics.Dim)
	}
	for i := 1; i < len(v.Eigenvalues); i++ {
		if cmplx.Abs(v.Eigenvalues[i]) > cmplx.Abs(v.Eigenvalues[i-1])+1e-15 {
			t.Errorf("eigenvalues not ordered by modulus at %d: %v > %v", i, v.Eigenvalues[i], v.Eigenvalues[i-1])
		}
	}
	if v.SpectralRadius != cmplx.Abs(v.Eigenvalues[0]) {
		t.Errorf("SpectralRadius = %v, leading modulus = %v", v.SpectralRadius, cmplx.Abs(v.Eigenvalues[0]))
	}
}
