package dynamics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// State layout: four adult male genotype shares followed by four female
// offspring genotype shares, both in genotype order GA, Ga, gA, ga.
const (
	Dim        = 8
	NGenotypes = 4
)

// GenotypeNames lists the genotype labels in state order. The first letter
// is the male-expressed screening allele (G or g), the second the
// female-expressed signaling allele (A or a).
var GenotypeNames = [NGenotypes]string{"GA", "Ga", "gA", "ga"}

type State []float64

// NewState copies vs into a State, rejecting any length other than Dim.
func NewState(vs []float64) (State, error) {
	if len(vs) != Dim {
		return nil, fmt.Errorf("dynamics: state has length %d, want %d: %w", len(vs), Dim, ErrInvalidArgument)
	}
	s := make(State, Dim)
	copy(s, vs)
	return s, nil
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] - other[i]
	}
	return result
}

func (s State) MaxAbsDiff(other State) float64 {
	max := 0.0
	for i := range s {
		if d := math.Abs(s[i] - other[i]); d > max {
			max = d
		}
	}
	return max
}

// Males returns the male half of the state. The returned slice aliases s.
func (s State) Males() State { return s[:NGenotypes] }

// Females returns the female half of the state. The returned slice aliases s.
func (s State) Females() State { return s[NGenotypes:] }

// Sums returns the totals of the male and female halves.
func (s State) Sums() (male, female float64) {
	for i := 0; i < NGenotypes; i++ {
		male += s[i]
		female += s[NGenotypes+i]
	}
	return male, female
}

// OnSimplex reports whether both halves sum to one within tol.
func (s State) OnSimplex(tol float64) bool {
	male, female := s.Sums()
	return math.Abs(male-1) <= tol && math.Abs(female-1) <= tol
}

// System is the motion-map collaborator. Motion evaluates the one-generation
// map F(X); MotionJacobian evaluates the dense 8x8 matrix dF/dX. Both are
// pure functions of (state, params): no internal state, safe for concurrent
// use. The map is defined on the interior of the paired unit simplex; for
// inputs outside its domain Motion may return a NaN-valued state, which
// callers detect with [State.IsValid].
type System interface {
	Motion(x State, p Params) State
	MotionJacobian(x State, p Params) *mat.Dense
}
