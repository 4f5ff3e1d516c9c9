// Package stability classifies equilibria of the discrete genotype map.
//
// The map advances population state in generations, so a fixed point is
// locally stable when every eigenvalue of the motion Jacobian lies strictly
// inside the unit circle:
//
//   - [Classify]: spectral verdict for a solved equilibrium
//   - [ClassifyState]: the same verdict for a state obtained elsewhere
//   - [LargestLyapunov]: twin-orbit exponent estimate along a trajectory
//
// # Usage
//
//	verdict, err := stability.Classify(sys, params, result)
//	if err != nil {
//	    return err
//	}
//	if verdict.Stable {
//	    // Perturbed populations return to this equilibrium.
//	}
package stability
