package domain

import (
	"math"
	"testing"
)

func TestReinforcedConfidence_DiminishingReturns(t *testing.T) {
	// Same increment yields smaller steps the closer confidence sits to 1.
	lowStep := ReinforcedConfidence(0.2, 0.1) - 0.2
	highStep := ReinforcedConfidence(0.9, 0.1) - 0.9

	if highStep >= lowStep {
		t.Errorf("step at 0.9 (%f) not smaller than step at 0.2 (%f)", highStep, lowStep)
	}
}

func TestReinforcedConfidence_NeverReachesOne(t *testing.T) {
	for _, c0 := range []float64{0, 0.25, 0.5, 0.9, 0.999} {
		for _, k := range []float64{0.01, 0.1, 0.5, 1.0} {
			c := c0
			for i := 0; i < 30; i++ {
				next := ReinforcedConfidence(c, k)
				if next < c {
					t.Fatalf("reinforcement decreased: %f -> %f (c0=%f k=%f)", c, next, c0, k)
				}
				c = next
			}
			if k < 1.0 && c >= 1.0 {
				t.Errorf("confidence reached 1.0 in finite steps (c0=%f k=%f)", c0, k)
			}
			if c > 1.0 {
				t.Errorf("confidence exceeded 1.0 (c0=%f k=%f)", c0, k)
			}
		}
	}
}

func TestReinforcedConfidence_StrictlyIncreasesBelowOne(t *testing.T) {
	for _, c0 := range []float64{0, 0.3, 0.7, 0.99} {
		next := ReinforcedConfidence(c0, 0.1)
		if next <= c0 {
			t.Errorf("reinforce(%f) = %f, want strict increase", c0, next)
		}
	}
}

func TestRaisedTension_Linear(t *testing.T) {
	// The increment magnitude is independent of current tension, unlike
	// reinforcement.
	const delta = 0.15
	for _, t0 := range []float64{0, 0.2, 0.5, 0.8} {
		got := RaisedTension(t0, delta)
		want := math.Min(1, t0+delta)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("RaisedTension(%f, %f) = %f, want %f", t0, delta, got, want)
		}
	}

	stepLow := RaisedTension(0.1, delta) - 0.1
	stepHigh := RaisedTension(0.6, delta) - 0.6
	if math.Abs(stepLow-stepHigh) > 1e-12 {
		t.Errorf("tension steps differ: %f vs %f", stepLow, stepHigh)
	}
}

func TestRaisedTension_CapsAtOne(t *testing.T) {
	if got := RaisedTension(0.95, 0.2); got != 1.0 {
		t.Errorf("RaisedTension(0.95, 0.2) = %f, want 1.0", got)
	}
	if got := RaisedTension(1.0, 0.5); got != 1.0 {
		t.Errorf("RaisedTension(1.0, 0.5) = %f, want 1.0", got)
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-0.2, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.4, 1},
	}
	for _, tc := range cases {
		if got := Clamp01(tc.in); got != tc.want {
			t.Errorf("Clamp01(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}
