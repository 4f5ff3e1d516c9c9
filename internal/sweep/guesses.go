package sweep

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"genodyn/internal/dynamics"
)

// Guesses draws n starting points for equilibrium searches. Each male half
// is a Dirichlet(1,1,1,1) draw, uniform over the genotype simplex, and the
// female half mirrors the same draw. The sequence is reproducible by seed.
func Guesses(n int, seed uint64) ([]dynamics.State, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sweep: n = %d, want > 0: %w", n, dynamics.ErrInvalidArgument)
	}

	alpha := make([]float64, dynamics.NGenotypes)
	for i := range alpha {
		alpha[i] = 1
	}
	dir := distmv.NewDirichlet(alpha, rand.NewSource(seed))

	out := make([]dynamics.State, n)
	draw := make([]float64, dynamics.NGenotypes)
	for i := range out {
		dir.Rand(draw)
		s := make(dynamics.State, dynamics.Dim)
		copy(s[:dynamics.NGenotypes], draw)
		copy(s[dynamics.NGenotypes:], draw)
		out[i] = s
	}
	return out, nil
}
