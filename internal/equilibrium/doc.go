// Package equilibrium locates fixed points of the motion map.
//
// [Residual] derives the root-finding form R(X) = F(X) - X together with its
// Jacobian, least-squares objective, and gradient. Two interchangeable
// [Strategy] implementations consume it:
//
//   - [Minimizer]: constrained minimization of 0.5*||R||^2 on the paired
//     simplex, augmented Lagrangian around gonum inner solvers
//   - [RootFinder]: damped Newton or Broyden iteration on R(X) = 0
//
// A search that fails to converge is a [Result] with Success=false, not an
// error. [Result.AtRoot] is the acceptance test callers use before treating
// a result as a genuine equilibrium.
package equilibrium
