// Package dynamics provides the core types for the two-locus, two-sex
// evolutionary model: the population state, the parameter set, the motion-map
// collaborator contract, and the error taxonomy shared by the solver and
// simulator layers.
//
//   - [State]: eight shares, male genotypes then female genotypes
//   - [Params]: immutable named coefficients, validated at construction
//   - [System]: law of motion F and its Jacobian as pure functions
//   - [DomainError], [PreconditionError], [NonConvergenceError]: typed
//     failures wrapping the package sentinels
//
// # Conventions
//
// Genotypes are ordered GA, Ga, gA, ga throughout. Equilibrium searches
// report failure as result data; only the trajectory iteration cap is
// surfaced as an error ([ErrNonConvergence]).
package dynamics
