package synth

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestRandomPlanDefaults(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	spec := RandomPlan(rng, 0, RandomOptions{})

	if len(spec.Beams) != 5 {
		t.Fatalf("expected 5 beams, got %d", len(spec.Beams))
	}
	for _, b := range spec.Beams {
		if len(b.ControlPoints) != 10 {
			t.Errorf("beam %s: expected 10 control points, got %d", b.Name, len(b.ControlPoints))
		}
		if b.MU < 50 || b.MU > 200 {
			t.Errorf("beam %s: MU %v out of range", b.Name, b.MU)
		}
		if b.ControlPoints[0].Weight != 0 {
			t.Errorf("beam %s: first weight = %v, want 0", b.Name, b.ControlPoints[0].Weight)
		}
		if last := b.ControlPoints[len(b.ControlPoints)-1].Weight; last != b.MU {
			t.Errorf("beam %s: last weight = %v, want %v", b.Name, last, b.MU)
		}
		for i := 1; i < len(b.ControlPoints); i++ {
			if b.ControlPoints[i].Weight < b.ControlPoints[i-1].Weight {
				t.Errorf("beam %s: weights not monotonic at %d", b.Name, i)
			}
		}
	}
}

func TestRandomPlanAperture(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	spec := RandomPlan(rng, 3, RandomOptions{Beams: 2, ControlPoints: 4, LeafPairs: 20})

	for _, b := range spec.Beams {
		for i, cp := range b.ControlPoints {
			if len(cp.Positions) != 40 {
				t.Fatalf("control point %d: expected 40 positions, got %d", i, len(cp.Positions))
			}
			for p := 0; p < 20; p++ {
				if cp.Positions[p+20] < cp.Positions[p] {
					t.Errorf("control point %d pair %d: right %v behind left %v", i, p, cp.Positions[p+20], cp.Positions[p])
				}
			}
		}
	}
}

func TestRandomPlanReproducible(t *testing.T) {
	a := RandomPlan(rand.New(rand.NewPCG(1, 1)), 0, RandomOptions{})
	b := RandomPlan(rand.New(rand.NewPCG(1, 1)), 0, RandomOptions{})
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce the same plan")
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{1.26, 1, 1.3},
		{-3.14159, 2, -3.14},
		{100, 3, 100},
	}
	for _, tt := range tests {
		if got := round(tt.v, tt.decimals); got != tt.want {
			t.Errorf("round(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}
