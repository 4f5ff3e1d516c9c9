package genetics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"genodyn/internal/dynamics"
)

const nGeno = dynamics.NGenotypes

// Genotype index layout matches the state convention GA, Ga, gA, ga: bit 1
// selects the male-expressed screening allele (0=G, 1=g), bit 0 the
// female-expressed signaling allele (0=A, 1=a).
func screening(i int) int { return i >> 1 }
func signaling(i int) int { return i & 1 }

// Family is the one-male, two-female matching model. Each generation, every
// adult male observes signals from the pool of female offspring, screens
// them according to his G/g allele, and forms a family with two females
// drawn from those he accepts. Each mother bears a brood sized by her payoff
// against her co-wife's type; children inherit one allele per locus from
// father or mother with equal probability. Both output halves of the map are
// normalized genotype shares, so the paired unit simplex is invariant by
// construction.
//
// Family is stateless and safe for concurrent use.
type Family struct{}

func NewFamily() Family { return Family{} }

// Motion evaluates the one-generation map F(X). Inputs whose female half
// sums to zero, or that produce no offspring at all, yield a NaN state.
func (Family) Motion(x dynamics.State, p dynamics.Params) dynamics.State {
	out := evaluate(x, p)
	s := make(dynamics.State, dynamics.Dim)
	for i := range out {
		s[i] = out[i].v
	}
	return s
}

// MotionJacobian evaluates the exact dense Jacobian dF/dX at x.
func (Family) MotionJacobian(x dynamics.State, p dynamics.Params) *mat.Dense {
	out := evaluate(x, p)
	j := mat.NewDense(dynamics.Dim, dynamics.Dim, nil)
	for i := range out {
		for k := 0; k < dynamics.Dim; k++ {
			j.Set(i, k, out[i].d[k])
		}
	}
	return j
}

// evaluate runs the matching model over dual numbers seeded on the eight
// state components, producing values and partial derivatives together.
func evaluate(x dynamics.State, p dynamics.Params) [dynamics.Dim]dual {
	var m, f [nGeno]dual
	for i := 0; i < nGeno; i++ {
		m[i] = seed(x[i], i)
		f[i] = seed(x[nGeno+i], nGeno+i)
	}

	// Availability shares of female offspring. Count-valued female inputs
	// are legal; only the mix matters for matching.
	fTot := f[0].add(f[1]).add(f[2]).add(f[3])
	if fTot.v <= 0 {
		return nanValues()
	}
	var phi [nGeno]dual
	for j := 0; j < nGeno; j++ {
		phi[j] = f[j].div(fTot)
	}

	// Probability that a male perceives the signal "A" from a female of
	// each signaling type, after her signal choice and his reading error.
	dA, da := p.Get("dA"), p.Get("da")
	eA, ea := p.Get("eA"), p.Get("ea")
	percA := [2]float64{
		dA*(1-eA) + (1-dA)*ea,
		(1-da)*(1-eA) + da*ea,
	}

	// pay[r][s]: brood size of a mother of signaling type r whose co-wife
	// has signaling type s.
	pay := [2][2]float64{
		{p.Get("PiAA"), p.Get("PiAa")},
		{p.Get("PiaA"), p.Get("Piaa")},
	}

	var n [nGeno]dual
	for i := 0; i < nGeno; i++ {
		// Acceptance row: G screens for perceived "A", g for perceived "a".
		var u [nGeno]float64
		for j := 0; j < nGeno; j++ {
			pa := percA[signaling(j)]
			if screening(i) == 0 {
				u[j] = pa
			} else {
				u[j] = 1 - pa
			}
		}

		z := con(0)
		for j := 0; j < nGeno; j++ {
			z = z.add(phi[j].scale(u[j]))
		}
		if z.v == 0 {
			continue // this male class accepts nobody and leaves no offspring
		}

		var q [nGeno]dual
		for j := 0; j < nGeno; j++ {
			q[j] = phi[j].scale(u[j]).div(z)
		}

		for j := 0; j < nGeno; j++ {
			for k := 0; k < nGeno; k++ {
				w := m[i].mul(q[j]).mul(q[k])
				broodJ := pay[signaling(j)][signaling(k)]
				broodK := pay[signaling(k)][signaling(j)]
				for g := 0; g < nGeno; g++ {
					coef := broodJ*transmit(i, j, g) + broodK*transmit(i, k, g)
					if coef != 0 {
						n[g] = n[g].add(w.scale(coef))
					}
				}
			}
		}
	}

	tot := n[0].add(n[1]).add(n[2]).add(n[3])
	if tot.v <= 0 {
		return nanValues()
	}

	// Sons and daughters of a family share one genotype distribution (two
	// autosomal loci, sex-symmetric transmission), so the two output halves
	// agree componentwise.
	var out [dynamics.Dim]dual
	for g := 0; g < nGeno; g++ {
		share := n[g].div(tot)
		out[g] = share
		out[nGeno+g] = share
	}
	return out
}

// transmit returns the probability that a child of father i and mother j has
// genotype g: independently per locus, the paternal or maternal allele with
// probability one half.
func transmit(i, j, g int) float64 {
	return inherit(screening(i), screening(j), screening(g)) *
		inherit(signaling(i), signaling(j), signaling(g))
}

func inherit(pat, mat, child int) float64 {
	p := 0.0
	if pat == child {
		p += 0.5
	}
	if mat == child {
		p += 0.5
	}
	return p
}

func nanValues() [dynamics.Dim]dual {
	nan := math.NaN()
	var out [dynamics.Dim]dual
	for i := range out {
		out[i].v = nan
		for k := range out[i].d {
			out[i].d[k] = nan
		}
	}
	return out
}
