package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"genodyn/internal/dynamics"
	"genodyn/internal/equilibrium"
	"genodyn/internal/stability"
)

// DefaultAcceptTol is the AtRoot tolerance separating genuine equilibria
// from searches that merely stopped.
const DefaultAcceptTol = 1e-9

// Config describes one batch of equilibrium searches over many guesses.
type Config struct {
	Sys    dynamics.System
	Params dynamics.Params

	// Strategy names the search algorithm, "root" or "minimize". Empty
	// means root.
	Strategy string

	// Solver tunes each individual search.
	Solver equilibrium.Config

	Guesses []dynamics.State

	// AcceptTol is the AtRoot acceptance tolerance. Zero means
	// DefaultAcceptTol.
	AcceptTol float64

	// Workers bounds concurrent searches. Zero means runtime.NumCPU().
	Workers int
}

// Outcome is the record of one guess. Rejected guesses keep their Result
// for inspection, but with the state overwritten by NaN so downstream
// consumers cannot mistake a stopping point for an equilibrium.
type Outcome struct {
	Index    int
	Guess    dynamics.State
	Result   *equilibrium.Result
	Verdict  *stability.Verdict
	Accepted bool
}

// Run solves every guess on a bounded worker pool and aggregates the
// outcomes. Searches are independent, so outcomes are deterministic for a
// fixed guess list regardless of worker count, and are ordered by guess
// index. Searches that fail to converge are data; only malformed input or
// a cancelled context aborts the sweep.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if len(cfg.Guesses) == 0 {
		return nil, fmt.Errorf("sweep: no guesses: %w", dynamics.ErrInvalidArgument)
	}
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = "root"
	}
	acceptTol := cfg.AcceptTol
	if acceptTol == 0 {
		acceptTol = DefaultAcceptTol
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]Outcome, len(cfg.Guesses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, guess := range cfg.Guesses {
		i, guess := i, guess
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			strat, err := equilibrium.NewStrategy(strategy, cfg.Sys, cfg.Params)
			if err != nil {
				return err
			}
			r, err := strat.Solve(guess, cfg.Solver)
			if err != nil {
				return fmt.Errorf("guess %d: %w", i, err)
			}

			o := Outcome{Index: i, Guess: guess, Result: r}
			if r.AtRoot(acceptTol) {
				v, err := stability.Classify(cfg.Sys, cfg.Params, r)
				if err != nil {
					return fmt.Errorf("guess %d: %w", i, err)
				}
				o.Accepted = true
				o.Verdict = v
			} else {
				r.State = nanState()
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildReport(outcomes), nil
}

func nanState() dynamics.State {
	s := make(dynamics.State, dynamics.Dim)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
