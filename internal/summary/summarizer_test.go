package summary

import (
	"errors"
	"math"
	"testing"

	"github.com/grekov/survfit/internal/mcmc"
)

func TestSummarize_ReferenceVector(t *testing.T) {
	// The documented interpolation rule, pinned exactly: for draws 1..10,
	// h = (n-1)p puts the median at 5.5 and the interval at 1.225/9.775
	draws := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	iv, err := Summarize(draws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if iv.Median != 5.5 {
		t.Errorf("expected median 5.5, got %g", iv.Median)
	}
	if math.Abs(iv.Lower-1.225) > 1e-12 {
		t.Errorf("expected lower 1.225, got %g", iv.Lower)
	}
	if math.Abs(iv.Upper-9.775) > 1e-12 {
		t.Errorf("expected upper 9.775, got %g", iv.Upper)
	}
	if iv.Mean != 5.5 {
		t.Errorf("expected mean 5.5, got %g", iv.Mean)
	}
}

func TestSummarize_UnsortedInput(t *testing.T) {
	iv, err := Summarize([]float64{9, 1, 5, 3, 7, 2, 10, 4, 8, 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Median != 5.5 {
		t.Errorf("expected median 5.5 from unsorted input, got %g", iv.Median)
	}
}

func TestSummarize_InputNotMutated(t *testing.T) {
	draws := []float64{3, 1, 2}
	if _, err := Summarize(draws); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draws[0] != 3 || draws[1] != 1 || draws[2] != 2 {
		t.Errorf("input slice was mutated: %v", draws)
	}
}

func TestSummarize_InsufficientSamples(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("expected ErrInsufficientSamples for empty input, got %v", err)
	}
	if _, err := Summarize([]float64{1.5}); !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("expected ErrInsufficientSamples for single draw, got %v", err)
	}
}

func TestQuantile_Bounds(t *testing.T) {
	xs := []float64{1, 2, 3}
	if got := Quantile(xs, 0); got != 1 {
		t.Errorf("expected q(0) == 1, got %g", got)
	}
	if got := Quantile(xs, 1); got != 3 {
		t.Errorf("expected q(1) == 3, got %g", got)
	}
}

func identity(g int) int { return g }

func TestRates(t *testing.T) {
	samples := make([]mcmc.Sample, 10)
	for i := range samples {
		// Group 0 draws 1..10, group 1 draws 2..20
		samples[i] = mcmc.Sample{Rates: []float64{float64(i + 1), float64(2 * (i + 1))}}
	}

	params, err := Rates(samples, 2, identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(params))
	}

	if params[0].Median != 5.5 {
		t.Errorf("group 0: expected median 5.5, got %g", params[0].Median)
	}
	if params[1].Median != 11 {
		t.Errorf("group 1: expected median 11, got %g", params[1].Median)
	}
	if want := 1 / 5.5; math.Abs(params[0].MeanLife-want) > 1e-12 {
		t.Errorf("group 0: expected mean life %g, got %g", want, params[0].MeanLife)
	}
	if params[0].Lower >= params[0].Median || params[0].Median >= params[0].Upper {
		t.Errorf("interval not ordered: %+v", params[0])
	}
}

func TestRates_InsufficientSamples(t *testing.T) {
	samples := []mcmc.Sample{{Rates: []float64{1}}}
	if _, err := Rates(samples, 1, identity); !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("expected ErrInsufficientSamples, got %v", err)
	}
}

func TestCurves(t *testing.T) {
	grid := []float64{0, 1, 2}
	samples := make([]mcmc.Sample, 4)
	for i := range samples {
		// Decreasing mock curves with spread across draws
		s := 0.1 * float64(i)
		samples[i] = mcmc.Sample{
			Rates:    []float64{1},
			Survival: [][]float64{{1, 0.5 + s/10, 0.2 + s/10}},
		}
	}

	curves, err := Curves(samples, grid, 1, identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(curves))
	}
	points := curves[0].Points
	if len(points) != len(grid) {
		t.Fatalf("expected %d points, got %d", len(grid), len(points))
	}

	if points[0].Median != 1 || points[0].Lower != 1 || points[0].Upper != 1 {
		t.Errorf("expected a degenerate band at t=0, got %+v", points[0])
	}
	for _, p := range points {
		if p.Lower > p.Median || p.Median > p.Upper {
			t.Errorf("band not ordered at t=%g: %+v", p.T, p)
		}
	}
	for k := 1; k < len(points); k++ {
		if points[k].Median > points[k-1].Median {
			t.Errorf("median band increased at t=%g", points[k].T)
		}
	}
}

func TestCurves_GroupMismatch(t *testing.T) {
	samples := []mcmc.Sample{
		{Rates: []float64{1}, Survival: [][]float64{{1}}},
		{Rates: []float64{1}, Survival: [][]float64{{1}}},
	}
	if _, err := Curves(samples, []float64{0}, 2, identity); err == nil {
		t.Error("expected error on group count mismatch")
	}
}

func TestCurves_NoGrid(t *testing.T) {
	samples := []mcmc.Sample{{Rates: []float64{1}}, {Rates: []float64{1}}}
	curves, err := Curves(samples, nil, 1, identity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if curves != nil {
		t.Errorf("expected nil curves without a grid, got %v", curves)
	}
}
