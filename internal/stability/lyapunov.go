package stability

import (
	"fmt"
	"math"

	"genodyn/internal/dynamics"
)

// LargestLyapunov estimates the largest Lyapunov exponent of the map at x0
// by the trajectory separation method: a twin orbit starts eps away, both
// are iterated together, and the separation is renormalized to eps after
// every step so neither overflow nor collapse accumulates.
//
// The estimate is the mean of ln(sep/eps) per step. Negative values mean
// nearby orbits contract toward each other, positive values flag sensitive
// dependence on the initial state.
func LargestLyapunov(sys dynamics.System, p dynamics.Params, x0 dynamics.State, steps int, eps float64) (float64, error) {
	if len(x0) != dynamics.Dim {
		return 0, fmt.Errorf("stability: state has length %d, want %d: %w", len(x0), dynamics.Dim, dynamics.ErrInvalidArgument)
	}
	if !x0.IsValid() {
		return 0, fmt.Errorf("stability: state contains NaN or Inf: %w", dynamics.ErrInvalidArgument)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("stability: steps = %d, want > 0: %w", steps, dynamics.ErrInvalidArgument)
	}
	if eps <= 0 || math.IsInf(eps, 0) {
		return 0, fmt.Errorf("stability: perturbation = %v, want finite > 0: %w", eps, dynamics.ErrInvalidArgument)
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += eps

	sumLog := 0.0
	count := 0
	for k := 0; k < steps; k++ {
		x = sys.Motion(x, p)
		xp = sys.Motion(xp, p)
		if !x.IsValid() || !xp.IsValid() {
			break
		}

		sep := x.Sub(xp).Norm()
		if sep == 0 {
			// The twin collapsed onto the reference orbit in floating
			// point. Contraction is total from here on.
			break
		}
		sumLog += math.Log(sep / eps)
		count++

		// Pull the twin back to distance eps along the current
		// separation direction.
		scale := eps / sep
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
	}

	if count == 0 {
		return 0, fmt.Errorf("stability: twin orbit left the domain before any separation was measured: %w", dynamics.ErrNonConvergence)
	}
	return sumLog / float64(count), nil
}
