package genetics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"genodyn/internal/dynamics"
)

func testParams(t *testing.T, vals map[string]float64) dynamics.Params {
	t.Helper()
	p, err := dynamics.NewParams(vals)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}
	return p
}

func randomSignaling(t *testing.T) dynamics.Params {
	return testParams(t, map[string]float64{
		"dA": 0.5, "da": 0.5, "eA": 0.2, "ea": 0.2,
		"PiaA": 6.0, "PiAA": 5.0, "Piaa": 4.0, "PiAa": 3.0,
	})
}

func preciseSignaling(t *testing.T) dynamics.Params {
	return testParams(t, map[string]float64{
		"dA": 1.0, "da": 0.5, "eA": 0.0, "ea": 1.0,
		"PiaA": 6.0, "PiAA": 5.0, "Piaa": 4.0, "PiAa": 3.0,
	})
}

var interiorStates = []dynamics.State{
	{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25},
	{0.3, 0.2, 0.1, 0.4, 0.15, 0.35, 0.3, 0.2},
	{0.05, 0.45, 0.3, 0.2, 0.4, 0.1, 0.2, 0.3},
	{0.7, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.7},
}

func TestFamily_MotionPreservesSimplex(t *testing.T) {
	fam := NewFamily()
	paramSets := []struct {
		name   string
		params dynamics.Params
	}{
		{"random signaling", randomSignaling(t)},
		{"precise signaling", preciseSignaling(t)},
	}

	for _, ps := range paramSets {
		t.Run(ps.name, func(t *testing.T) {
			for _, x := range interiorStates {
				next := fam.Motion(x, ps.params)
				if !next.IsValid() {
					t.Fatalf("Motion(%v) produced NaN/Inf: %v", x, next)
				}
				if !next.OnSimplex(1e-12) {
					male, female := next.Sums()
					t.Errorf("Motion(%v) sums = (%v, %v), want (1, 1)", x, male, female)
				}
				for i, v := range next {
					if v < 0 || v > 1 {
						t.Errorf("Motion(%v)[%d] = %v outside [0, 1]", x, i, v)
					}
				}
			}
		})
	}
}

func TestFamily_JacobianMatchesFiniteDifference(t *testing.T) {
	fam := NewFamily()
	paramSets := []struct {
		name   string
		params dynamics.Params
	}{
		{"random signaling", randomSignaling(t)},
		{"precise signaling", preciseSignaling(t)},
	}

	for _, ps := range paramSets {
		t.Run(ps.name, func(t *testing.T) {
			for _, x := range interiorStates {
				got := fam.MotionJacobian(x, ps.params)
				want := mat.NewDense(dynamics.Dim, dynamics.Dim, nil)
				fd.Jacobian(want, func(y, v []float64) {
					copy(y, fam.Motion(v, ps.params))
				}, x, &fd.JacobianSettings{Formula: fd.Central})

				for i := 0; i < dynamics.Dim; i++ {
					for j := 0; j < dynamics.Dim; j++ {
						if d := math.Abs(got.At(i, j) - want.At(i, j)); d > 1e-6 {
							t.Errorf("J[%d,%d] = %v, finite difference %v (diff %v) at %v",
								i, j, got.At(i, j), want.At(i, j), d, x)
						}
					}
				}
			}
		})
	}
}

// With truthful signals and error-free screening, GA males breed only with GA
// females and ga males only with ga females, so on states carrying just those
// two genotypes the male GA share follows the scalar replicator recurrence
// m' = PiAA*m / (PiAA*m + Piaa*(1-m)).
func TestFamily_PerfectScreeningRecurrence(t *testing.T) {
	fam := NewFamily()
	p := testParams(t, map[string]float64{
		"dA": 1.0, "da": 1.0, "eA": 0.0, "ea": 0.0,
		"PiaA": 6.0, "PiAA": 5.0, "Piaa": 3.0, "PiAa": 2.0,
	})

	tests := []struct {
		m0, fGA, fga float64
	}{
		{0.3, 0.4, 0.6},
		{0.3, 1.5, 2.1},
		{0.9, 0.5, 0.5},
	}

	for _, tt := range tests {
		x := dynamics.State{tt.m0, 0, 0, 1 - tt.m0, tt.fGA, 0, 0, tt.fga}
		next := fam.Motion(x, p)

		want := 5.0 * tt.m0 / (5.0*tt.m0 + 3.0*(1-tt.m0))
		if math.Abs(next[0]-want) > 1e-12 {
			t.Errorf("m0=%v: next GA share = %v, want %v", tt.m0, next[0], want)
		}
		if math.Abs(next[4]-want) > 1e-12 {
			t.Errorf("m0=%v: female GA share = %v, want %v", tt.m0, next[4], want)
		}
		if next[1] != 0 || next[2] != 0 || next[5] != 0 || next[6] != 0 {
			t.Errorf("m0=%v: absent genotypes reappeared: %v", tt.m0, next)
		}
	}
}

// Matching depends only on the mix of available females, so scaling the
// female half (count-valued input) must not change the image.
func TestFamily_MotionFemaleScaleInvariance(t *testing.T) {
	fam := NewFamily()
	p := randomSignaling(t)

	x := dynamics.State{0.3, 0.2, 0.1, 0.4, 0.15, 0.35, 0.3, 0.2}
	scaled := x.Clone()
	for i := 4; i < 8; i++ {
		scaled[i] *= 2.5
	}

	a := fam.Motion(x, p)
	b := fam.Motion(scaled, p)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-13 {
			t.Errorf("component %d: %v vs %v under female rescaling", i, a[i], b[i])
		}
	}
}

func TestFamily_DegenerateInputs(t *testing.T) {
	fam := NewFamily()
	p := randomSignaling(t)

	tests := []struct {
		name string
		x    dynamics.State
	}{
		{"zero female half", dynamics.State{0.25, 0.25, 0.25, 0.25, 0, 0, 0, 0}},
		{"zero state", make(dynamics.State, dynamics.Dim)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := fam.Motion(tt.x, p)
			if next.IsValid() {
				t.Errorf("Motion(%v) = %v, want NaN state", tt.x, next)
			}
		})
	}
}

func TestTransmit(t *testing.T) {
	tests := []struct {
		father, mother, child int
		want                  float64
	}{
		{0, 0, 0, 1.0},    // GA x GA -> GA always
		{0, 3, 0, 0.25},   // GA x ga -> each genotype equally
		{0, 3, 1, 0.25},
		{0, 3, 2, 0.25},
		{0, 3, 3, 0.25},
		{1, 1, 1, 1.0},    // Ga x Ga -> Ga always
		{0, 1, 0, 0.5},    // GA x Ga: G certain, A with probability 1/2
		{0, 1, 2, 0.0},    // gA impossible from GA x Ga
		{3, 3, 0, 0.0},    // GA impossible from ga x ga
	}

	for _, tt := range tests {
		if got := transmit(tt.father, tt.mother, tt.child); math.Abs(got-tt.want) > 1e-15 {
			t.Errorf("transmit(%d, %d, %d) = %v, want %v", tt.father, tt.mother, tt.child, got, tt.want)
		}
	}
}

func TestDualArithmetic(t *testing.T) {
	// f(a, b) = (a*b + a) / b with a=2, b=4: value 2.5,
	// df/da = (b+1)/b = 1.25, df/db = -a/b^2 = -0.125.
	a := seed(2, 0)
	b := seed(4, 1)
	f := a.mul(b).add(a).div(b)

	if math.Abs(f.v-2.5) > 1e-15 {
		t.Errorf("value = %v, want 2.5", f.v)
	}
	if math.Abs(f.d[0]-1.25) > 1e-15 {
		t.Errorf("df/da = %v, want 1.25", f.d[0])
	}
	if math.Abs(f.d[1]+0.125) > 1e-15 {
		t.Errorf("df/db = %v, want -0.125", f.d[1])
	}
}
