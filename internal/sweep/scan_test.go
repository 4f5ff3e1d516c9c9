package sweep

import (
	"context"
	"errors"
	"math"
	"testing"

	"genodyn/internal/dynamics"
	"genodyn/internal/equilibrium"
	"genodyn/internal/genetics"
)

func TestParamScan(t *testing.T) {
	uniform := dynamics.State{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}

	points, err := ParamScan(context.Background(), ScanConfig{
		Sys:    genetics.NewFamily(),
		Params: testParams(t),
		Name:   "PiAA",
		From:   4.0,
		To:     6.0,
		N:      5,
		Guess:  uniform,
		Solver: equilibrium.Config{Method: "newton", Tol: 1e-10, MaxIterations: 500, UseJacobian: true},
	})
	if err != nil {
		t.Fatalf("ParamScan: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("got %d points, want 5", len(points))
	}

	want := []float64{4.0, 4.5, 5.0, 5.5, 6.0}
	for i, pt := range points {
		if math.Abs(pt.Value-want[i]) > 1e-12 {
			t.Errorf("point %d value = %v, want %v", i, pt.Value, want[i])
		}
		if !pt.Accepted {
			t.Errorf("point %d rejected: %s", i, pt.Result.Message)
			continue
		}
		if !pt.Result.State.OnSimplex(1e-9) {
			male, female := pt.Result.State.Sums()
			t.Errorf("point %d sums = (%v, %v), want (1, 1)", i, male, female)
		}
		if pt.Verdict == nil {
			t.Errorf("point %d has no verdict", i)
		}
	}
}

func TestParamScan_InvalidInputs(t *testing.T) {
	uniform := dynamics.State{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}
	base := ScanConfig{
		Sys:    genetics.NewFamily(),
		Params: testParams(t),
		Name:   "PiAA",
		From:   4.0,
		To:     6.0,
		N:      5,
		Guess:  uniform,
	}

	single := base
	single.N = 1
	if _, err := ParamScan(context.Background(), single); !errors.Is(err, dynamics.ErrInvalidArgument) {
		t.Errorf("N=1 error = %v, want invalid argument", err)
	}

	unknown := base
	unknown.Name = "zeta"
	if _, err := ParamScan(context.Background(), unknown); !errors.Is(err, dynamics.ErrInvalidArgument) {
		t.Errorf("unknown parameter error = %v, want invalid argument", err)
	}

	infinite := base
	infinite.To = math.Inf(1)
	if _, err := ParamScan(context.Background(), infinite); !errors.Is(err, dynamics.ErrInvalidArgument) {
		t.Errorf("infinite range error = %v, want invalid argument", err)
	}

	// Scanning a probability out of [0, 1] fails at the offending point
	// and returns the points already scanned.
	outOfRange := base
	outOfRange.Name = "dA"
	outOfRange.From = 0.8
	outOfRange.To = 1.6
	outOfRange.Solver = equilibrium.Config{Method: "newton", Tol: 1e-10, MaxIterations: 500, UseJacobian: true}
	pts, err := ParamScan(context.Background(), outOfRange)
	if !errors.Is(err, dynamics.ErrInvalidArgument) {
		t.Errorf("out-of-range scan error = %v, want invalid argument", err)
	}
	if len(pts) == 0 || len(pts) >= 5 {
		t.Errorf("got %d points before the failure, want a strict prefix", len(pts))
	}
}

func TestParamScan_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pts, err := ParamScan(ctx, ScanConfig{
		Sys:    genetics.NewFamily(),
		Params: testParams(t),
		Name:   "PiAA",
		From:   4.0,
		To:     6.0,
		N:      3,
		Guess:  dynamics.State{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(pts) != 0 {
		t.Errorf("got %d points from a cancelled scan, want 0", len(pts))
	}
}
