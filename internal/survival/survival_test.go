package survival

import (
	"errors"
	"math"
	"testing"
)

func TestSurvival_Identities(t *testing.T) {
	rates := []float64{0.01, 0.5, 1, 3, 250}
	times := []float64{0, 0.1, 1, 7.5, 100}

	for _, rate := range rates {
		for _, tm := range times {
			s, err := Survival(rate, tm)
			if err != nil {
				t.Fatalf("Survival(%g, %g): unexpected error %v", rate, tm, err)
			}
			f, err := CDF(rate, tm)
			if err != nil {
				t.Fatalf("CDF(%g, %g): unexpected error %v", rate, tm, err)
			}

			if math.Abs(s+f-1) > 1e-12 {
				t.Errorf("S+F != 1 for rate=%g t=%g: got %g", rate, tm, s+f)
			}
			if s < 0 || s > 1 {
				t.Errorf("S out of [0,1] for rate=%g t=%g: got %g", rate, tm, s)
			}

			h, err := Hazard(rate, tm)
			if err != nil {
				t.Fatalf("Hazard(%g, %g): unexpected error %v", rate, tm, err)
			}
			if h != rate {
				t.Errorf("hazard not constant: rate=%g t=%g got %g", rate, tm, h)
			}

			ch, err := CumulativeHazard(rate, tm)
			if err != nil {
				t.Fatalf("CumulativeHazard(%g, %g): unexpected error %v", rate, tm, err)
			}
			if ch != rate*tm {
				t.Errorf("cumulative hazard: rate=%g t=%g got %g, want %g", rate, tm, ch, rate*tm)
			}
			// -ln S(t) == Λ(t), only checkable while S(t) is not underflowed
			if s > 0 && math.Abs(-math.Log(s)-ch) > 1e-9*(1+ch) {
				t.Errorf("-ln S != cumulative hazard: rate=%g t=%g: %g vs %g", rate, tm, -math.Log(s), ch)
			}
		}
	}
}

func TestSurvival_AtZero(t *testing.T) {
	s, err := Survival(2.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != 1 {
		t.Errorf("expected S(0) == 1, got %g", s)
	}
}

func TestSurvival_Monotone(t *testing.T) {
	prev := math.Inf(1)
	for _, tm := range []float64{0, 0.5, 1, 2, 4, 8, 16, 1000} {
		s, err := Survival(0.7, tm)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s > prev {
			t.Errorf("S not non-increasing at t=%g: %g > %g", tm, s, prev)
		}
		prev = s
	}
}

func TestSurvival_DomainErrors(t *testing.T) {
	cases := []struct {
		name string
		rate float64
		t    float64
	}{
		{"zero rate", 0, 1},
		{"negative rate", -1, 1},
		{"NaN rate", math.NaN(), 1},
		{"negative time", 1, -0.5},
		{"NaN time", 1, math.NaN()},
	}

	for _, tc := range cases {
		if _, err := Survival(tc.rate, tc.t); !errors.Is(err, ErrDomain) {
			t.Errorf("%s: expected ErrDomain, got %v", tc.name, err)
		}
		if _, err := Density(tc.rate, tc.t); !errors.Is(err, ErrDomain) {
			t.Errorf("%s: Density expected ErrDomain, got %v", tc.name, err)
		}
		if _, err := Hazard(tc.rate, tc.t); !errors.Is(err, ErrDomain) {
			t.Errorf("%s: Hazard expected ErrDomain, got %v", tc.name, err)
		}
		if _, err := CumulativeHazard(tc.rate, tc.t); !errors.Is(err, ErrDomain) {
			t.Errorf("%s: CumulativeHazard expected ErrDomain, got %v", tc.name, err)
		}
	}
}

func TestSurvival_LargeRateTime(t *testing.T) {
	// Deep tail: must underflow cleanly to 0, never go negative or NaN
	s, err := Survival(1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != 0 {
		t.Errorf("expected underflow to 0, got %g", s)
	}

	f, err := CDF(1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != 1 {
		t.Errorf("expected CDF 1 in deep tail, got %g", f)
	}
}

func TestCurve(t *testing.T) {
	grid := []float64{0, 1, 2, 3}
	curve, err := Curve(0.5, grid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(curve) != len(grid) {
		t.Fatalf("expected %d points, got %d", len(grid), len(curve))
	}
	if curve[0] != 1 {
		t.Errorf("expected curve to start at 1, got %g", curve[0])
	}
	for i := 1; i < len(curve); i++ {
		if curve[i] >= curve[i-1] {
			t.Errorf("curve not strictly decreasing at %d: %g >= %g", i, curve[i], curve[i-1])
		}
	}

	if _, err := Curve(0.5, []float64{0, -1}); !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain for negative grid point, got %v", err)
	}
}
