package dynamics

import (
	"errors"
	"math"
	"testing"
)

func validParamVals() map[string]float64 {
	return map[string]float64{
		"dA": 0.5, "da": 0.5, "eA": 0.2, "ea": 0.2,
		"PiaA": 6.0, "PiAA": 5.0, "Piaa": 4.0, "PiAa": 3.0,
	}
}

func TestNewParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]float64)
		wantErr bool
	}{
		{"valid", func(m map[string]float64) {}, false},
		{"with c", func(m map[string]float64) { m["c"] = 2.0 }, false},
		{"missing probability", func(m map[string]float64) { delete(m, "dA") }, true},
		{"missing payoff", func(m map[string]float64) { delete(m, "Piaa") }, true},
		{"probability above one", func(m map[string]float64) { m["eA"] = 1.5 }, true},
		{"negative probability", func(m map[string]float64) { m["da"] = -0.1 }, true},
		{"zero payoff", func(m map[string]float64) { m["PiAa"] = 0 }, true},
		{"negative payoff", func(m map[string]float64) { m["PiAA"] = -5 }, true},
		{"NaN probability", func(m map[string]float64) { m["ea"] = math.NaN() }, true},
		{"non-positive c", func(m map[string]float64) { m["c"] = 0 }, true},
		{"unknown name", func(m map[string]float64) { m["gamma"] = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := validParamVals()
			tt.mutate(vals)
			_, err := NewParams(vals)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParams_Immutable(t *testing.T) {
	vals := validParamVals()
	p, err := NewParams(vals)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	vals["dA"] = 0.9
	if p.Get("dA") != 0.5 {
		t.Error("Params aliases the constructor map")
	}

	m := p.Map()
	m["eA"] = 0.99
	if p.Get("eA") != 0.2 {
		t.Error("Map() exposes internal storage")
	}
}

func TestParams_With(t *testing.T) {
	p := MustParams(validParamVals())

	q, err := p.With("eA", 0.0)
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if q.Get("eA") != 0.0 {
		t.Errorf("derived eA = %v, want 0", q.Get("eA"))
	}
	if p.Get("eA") != 0.2 {
		t.Errorf("original eA = %v, want 0.2 (With must not mutate)", p.Get("eA"))
	}

	if _, err := p.With("eA", 2.0); err == nil {
		t.Error("With accepted an out-of-range probability")
	}
}

func TestParams_C(t *testing.T) {
	p := MustParams(validParamVals())
	if got := p.C(); got != 1.0 {
		t.Errorf("default C() = %v, want 1", got)
	}

	q, err := p.With("c", 2.5)
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if got := q.C(); got != 2.5 {
		t.Errorf("C() = %v, want 2.5", got)
	}
}

func TestParams_Names(t *testing.T) {
	p := MustParams(validParamVals())
	names := p.Names()
	if len(names) != 8 {
		t.Fatalf("Names() returned %d entries, want 8", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names() not sorted: %v", names)
			break
		}
	}
}
