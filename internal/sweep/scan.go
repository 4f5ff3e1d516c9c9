package sweep

import (
	"context"
	"fmt"
	"math"

	"genodyn/internal/dynamics"
	"genodyn/internal/equilibrium"
	"genodyn/internal/stability"
)

// ScanConfig describes a one-dimensional parameter scan: re-solve from one
// fixed guess while a single named parameter moves across [From, To].
type ScanConfig struct {
	Sys    dynamics.System
	Params dynamics.Params

	// Name of the parameter to vary.
	Name string

	From, To float64

	// N is the number of scan points, endpoints included. N >= 2.
	N int

	Guess    dynamics.State
	Strategy string
	Solver   equilibrium.Config

	// AcceptTol is the AtRoot acceptance tolerance. Zero means
	// DefaultAcceptTol.
	AcceptTol float64
}

// ScanPoint is one parameter value's search outcome. As in Run, a rejected
// search keeps its Result with the state overwritten by NaN.
type ScanPoint struct {
	Value    float64
	Result   *equilibrium.Result
	Verdict  *stability.Verdict
	Accepted bool
}

// ParamScan walks the parameter range point by point, in order, honoring
// ctx between points. Unlike Run it is sequential: scans are usually read
// as a curve, and each point is a single search.
func ParamScan(ctx context.Context, cfg ScanConfig) ([]ScanPoint, error) {
	if cfg.N < 2 {
		return nil, fmt.Errorf("sweep: scan needs at least 2 points, got %d: %w", cfg.N, dynamics.ErrInvalidArgument)
	}
	if math.IsNaN(cfg.From) || math.IsInf(cfg.From, 0) || math.IsNaN(cfg.To) || math.IsInf(cfg.To, 0) {
		return nil, fmt.Errorf("sweep: scan range [%v, %v] is not finite: %w", cfg.From, cfg.To, dynamics.ErrInvalidArgument)
	}
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = "root"
	}
	acceptTol := cfg.AcceptTol
	if acceptTol == 0 {
		acceptTol = DefaultAcceptTol
	}

	step := (cfg.To - cfg.From) / float64(cfg.N-1)
	points := make([]ScanPoint, 0, cfg.N)

	for i := 0; i < cfg.N; i++ {
		select {
		case <-ctx.Done():
			return points, ctx.Err()
		default:
		}

		value := cfg.From + float64(i)*step
		p, err := cfg.Params.With(cfg.Name, value)
		if err != nil {
			return points, fmt.Errorf("sweep: scan point %d: %w", i, err)
		}

		strat, err := equilibrium.NewStrategy(strategy, cfg.Sys, p)
		if err != nil {
			return points, err
		}
		r, err := strat.Solve(cfg.Guess, cfg.Solver)
		if err != nil {
			return points, fmt.Errorf("sweep: scan point %d: %w", i, err)
		}

		pt := ScanPoint{Value: value, Result: r}
		if r.AtRoot(acceptTol) {
			v, err := stability.Classify(cfg.Sys, p, r)
			if err != nil {
				return points, fmt.Errorf("sweep: scan point %d: %w", i, err)
			}
			pt.Accepted = true
			pt.Verdict = v
		} else {
			r.State = nanState()
		}
		points = append(points, pt)
	}
	return points, nil
}
