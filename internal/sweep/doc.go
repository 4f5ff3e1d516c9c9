// Package sweep runs batches of equilibrium searches.
//
// The genotype map routinely has several equilibria, so a single search
// says little. A sweep draws many starting points ([Guesses]), solves each
// one independently on a bounded worker pool ([Run]), and aggregates the
// accepted equilibria into a [Report]: distinct fixed points, stability
// counts and summary statistics.
//
// [ParamScan] is the one-dimensional variant: one guess, one moving
// parameter, a curve of equilibria.
package sweep
