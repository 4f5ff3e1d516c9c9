package sweep

import (
	"math"

	"github.com/montanaflynn/stats"

	"genodyn/internal/dynamics"
)

// DefaultClusterTol is the componentwise distance under which two accepted
// equilibria count as the same point.
const DefaultClusterTol = 1e-6

// Stats summarizes one quantity across the accepted outcomes. All fields
// are NaN when nothing was accepted.
type Stats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
}

// Report aggregates a finished sweep.
type Report struct {
	Outcomes []Outcome

	// Accepted counts outcomes that passed the AtRoot acceptance test.
	Accepted int

	// Distinct holds one representative per equilibrium found, clustered
	// componentwise within DefaultClusterTol, in guess order.
	Distinct []dynamics.State

	// Stable counts accepted equilibria whose spectrum lies inside the
	// unit circle.
	Stable int

	ObjectiveStats Stats
	RadiusStats    Stats
}

func buildReport(outcomes []Outcome) *Report {
	rep := &Report{Outcomes: outcomes}

	var states []dynamics.State
	var objectives, radii []float64
	for _, o := range outcomes {
		if !o.Accepted {
			continue
		}
		rep.Accepted++
		states = append(states, o.Result.State)
		objectives = append(objectives, o.Result.Objective)
		if o.Verdict != nil {
			radii = append(radii, o.Verdict.SpectralRadius)
			if o.Verdict.Stable {
				rep.Stable++
			}
		}
	}

	rep.Distinct = clusterStates(states, DefaultClusterTol)
	rep.ObjectiveStats = summarize(objectives)
	rep.RadiusStats = summarize(radii)
	return rep
}

// clusterStates greedily picks representatives: a state joins the first
// representative within tol of it, otherwise becomes a new one.
func clusterStates(states []dynamics.State, tol float64) []dynamics.State {
	var reps []dynamics.State
	for _, s := range states {
		found := false
		for _, r := range reps {
			if s.MaxAbsDiff(r) <= tol {
				found = true
				break
			}
		}
		if !found {
			reps = append(reps, s.Clone())
		}
	}
	return reps
}

func summarize(xs []float64) Stats {
	nan := math.NaN()
	if len(xs) == 0 {
		return Stats{Mean: nan, Median: nan, Min: nan, Max: nan, StdDev: nan}
	}
	out := Stats{Mean: nan, Median: nan, Min: nan, Max: nan, StdDev: nan}
	if v, err := stats.Mean(xs); err == nil {
		out.Mean = v
	}
	if v, err := stats.Median(xs); err == nil {
		out.Median = v
	}
	if v, err := stats.Min(xs); err == nil {
		out.Min = v
	}
	if v, err := stats.Max(xs); err == nil {
		out.Max = v
	}
	if v, err := stats.StandardDeviation(xs); err == nil {
		out.StdDev = v
	}
	return out
}
