// Package simulate iterates the generation map into trajectories.
//
// A [Simulator] binds a system to one parameter set and runs it from an
// initial state under a stopping rule chosen in [Config]: a fixed number of
// generations, or until the population settles to within a tolerance. The
// settling rule always carries an iteration cap, so a run on a cycling or
// chaotic parameter regime ends in a [dynamics.NonConvergenceError] instead
// of looping forever.
//
// Initial conditions come from [InitialFromState] or from the
// [IsolatedSubpopulations] construction used throughout the signaling
// literature.
package simulate
