package stability

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"genodyn/internal/dynamics"
	"genodyn/internal/equilibrium"
)

// Verdict is the spectral classification of a fixed point of the map.
type Verdict struct {
	// Eigenvalues of the motion Jacobian, ordered by decreasing modulus.
	Eigenvalues []complex128

	// SpectralRadius is the largest eigenvalue modulus.
	SpectralRadius float64

	// Stable reports whether every eigenvalue lies strictly inside the
	// unit circle. A radius of exactly 1 is not stable.
	Stable bool
}

func (v *Verdict) String() string {
	if v == nil {
		return "<nil>"
	}
	label := "unstable"
	if v.Stable {
		label = "stable"
	}
	return fmt.Sprintf("%s (spectral radius %.6g)", label, v.SpectralRadius)
}

// Classify evaluates the motion Jacobian at a solved equilibrium and
// classifies it by its eigenvalue spectrum. The result must come from a
// successful search: classifying a non-equilibrium is undefined, so a
// failed or nil result yields a PreconditionError.
func Classify(sys dynamics.System, p dynamics.Params, eq *equilibrium.Result) (*Verdict, error) {
	if eq == nil || !eq.Success {
		return nil, &dynamics.PreconditionError{Op: "stability.Classify", Reason: "equilibrium search did not converge"}
	}
	return ClassifyState(sys, p, eq.State)
}

// ClassifyState classifies an arbitrary state as a fixed point, for states
// obtained outside the solvers such as the end of a settled trajectory. It
// validates only length and finiteness: whether the state really is a fixed
// point is the caller's claim.
func ClassifyState(sys dynamics.System, p dynamics.Params, x dynamics.State) (*Verdict, error) {
	if len(x) != dynamics.Dim {
		return nil, fmt.Errorf("stability: state has length %d, want %d: %w", len(x), dynamics.Dim, dynamics.ErrInvalidArgument)
	}
	if !x.IsValid() {
		return nil, fmt.Errorf("stability: state contains NaN or Inf: %w", dynamics.ErrInvalidArgument)
	}

	jac := sys.MotionJacobian(x, p)
	if !denseIsFinite(jac) {
		return nil, fmt.Errorf("stability: motion map is undefined at this state: %w", dynamics.ErrDomain)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(jac, mat.EigenNone); !ok {
		return nil, fmt.Errorf("stability: eigendecomposition did not converge: %w", dynamics.ErrNonConvergence)
	}
	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool {
		mi, mj := cmplx.Abs(vals[i]), cmplx.Abs(vals[j])
		if mi != mj {
			return mi > mj
		}
		if real(vals[i]) != real(vals[j]) {
			return real(vals[i]) > real(vals[j])
		}
		return imag(vals[i]) > imag(vals[j])
	})

	radius := 0.0
	if len(vals) > 0 {
		radius = cmplx.Abs(vals[0])
	}
	return &Verdict{
		Eigenvalues:    vals,
		SpectralRadius: radius,
		Stable:         radius < 1,
	}, nil
}

func denseIsFinite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
