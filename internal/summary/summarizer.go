// Package summary turns retained posterior draws into point estimates and
// empirical credible intervals. No parametric assumption is made about the
// posterior's shape; everything is computed from sorted draws.
package summary

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/grekov/survfit/internal/mcmc"
	"github.com/grekov/survfit/internal/model"
)

// ErrInsufficientSamples reports fewer than two retained draws, for which
// percentile indexing is undefined
var ErrInsufficientSamples = errors.New("summary: insufficient samples")

// Credible-interval bounds: 2.5th and 97.5th percentiles ("95% interval")
const (
	lowerProb  = 0.025
	medianProb = 0.5
	upperProb  = 0.975
)

// Quantile returns the p-th empirical quantile of sorted draws using
// linear interpolation between order statistics (R type 7): with
// h = (n-1)p, the result is xs[⌊h⌋] + (h-⌊h⌋)·(xs[⌊h⌋+1] - xs[⌊h⌋]).
// For draws 1..10 this yields median 5.5, q(.025) = 1.225, q(.975) = 9.775.
// xs must be sorted ascending and hold at least one element.
func Quantile(xs []float64, p float64) float64 {
	if p <= 0 {
		return xs[0]
	}
	if p >= 1 {
		return xs[len(xs)-1]
	}
	h := float64(len(xs)-1) * p
	lo := int(math.Floor(h))
	if lo == len(xs)-1 {
		return xs[lo]
	}
	return xs[lo] + (h-float64(lo))*(xs[lo+1]-xs[lo])
}

// Interval is the empirical summary of one monitored quantity
type Interval struct {
	Median float64
	Lower  float64
	Upper  float64
	Mean   float64
}

// Summarize computes the median, 95% interval bounds and mean of a set of
// draws. Fails with ErrInsufficientSamples for fewer than 2 draws.
func Summarize(draws []float64) (Interval, error) {
	if len(draws) < 2 {
		return Interval{}, fmt.Errorf("%w: got %d draws, need at least 2", ErrInsufficientSamples, len(draws))
	}

	sorted := append([]float64(nil), draws...)
	sort.Float64s(sorted)

	return Interval{
		Median: Quantile(sorted, medianProb),
		Lower:  Quantile(sorted, lowerProb),
		Upper:  Quantile(sorted, upperProb),
		Mean:   stat.Mean(sorted, nil),
	}, nil
}

// Rates summarizes the pooled posterior draws of every group's rate.
// label maps a group index to its reported label.
func Rates(samples []mcmc.Sample, groups int, label func(int) int) ([]model.ParameterSummary, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: got %d pooled draws, need at least 2", ErrInsufficientSamples, len(samples))
	}

	summaries := make([]model.ParameterSummary, groups)
	draws := make([]float64, len(samples))

	for g := 0; g < groups; g++ {
		for i, s := range samples {
			draws[i] = s.Rates[g]
		}
		iv, err := Summarize(draws)
		if err != nil {
			return nil, err
		}
		summaries[g] = model.ParameterSummary{
			Group:    label(g),
			Median:   iv.Median,
			Lower:    iv.Lower,
			Upper:    iv.Upper,
			Mean:     iv.Mean,
			MeanLife: 1 / iv.Median,
		}
	}

	return summaries, nil
}

// Curves summarizes the pooled survival draws of every group into
// pointwise posterior bands over the prediction grid. Samples must carry
// survival values (a grid was configured on the sampler).
func Curves(samples []mcmc.Sample, grid []float64, groups int, label func(int) int) ([]model.SurvivalCurve, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: got %d pooled draws, need at least 2", ErrInsufficientSamples, len(samples))
	}
	if len(grid) == 0 {
		return nil, nil
	}
	for _, s := range samples {
		if len(s.Survival) != groups {
			return nil, fmt.Errorf("summary: draw carries survival for %d groups, want %d", len(s.Survival), groups)
		}
	}

	curves := make([]model.SurvivalCurve, groups)
	draws := make([]float64, len(samples))

	for g := 0; g < groups; g++ {
		points := make([]model.CurvePoint, len(grid))
		for k, t := range grid {
			for i, s := range samples {
				draws[i] = s.Survival[g][k]
			}
			iv, err := Summarize(draws)
			if err != nil {
				return nil, err
			}
			points[k] = model.CurvePoint{
				T:      t,
				Lower:  iv.Lower,
				Median: iv.Median,
				Upper:  iv.Upper,
			}
		}
		curves[g] = model.SurvivalCurve{Group: label(g), Points: points}
	}

	return curves, nil
}
