// Package fit estimates exponential hazard rates by maximum likelihood.
//
// For right-censored exponential data the log-likelihood of a group is
// ℓ(λ) = d·log(λ) - λ·Σt over all observations (events contribute their
// event time, censored observations their threshold), with d the number of
// uncensored events. ℓ is concave and maximized in closed form at
// λ̂ = d / Σt, events over person-time at risk. No numeric optimizer is
// used.
package fit

import (
	"errors"
	"fmt"

	"github.com/grekov/survfit/internal/model"
)

// ErrUndefinedEstimate reports a group whose MLE sits on the boundary
// (zero observed events) or cannot be formed at all (zero observations)
var ErrUndefinedEstimate = errors.New("fit: undefined estimate")

// Fit computes the closed-form MLE for every group in the dataset.
//
// The returned slice always has one entry per group, in group-index order,
// so callers can render whatever is identifiable. When any group has zero
// observed events its entry carries Rate 0 and Degenerate true, and Fit
// also returns an ErrUndefinedEstimate-wrapped error naming that group.
func Fit(ds *model.Dataset) ([]model.Estimate, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrUndefinedEstimate)
	}

	estimates := make([]model.Estimate, ds.Groups())
	var degenerate error

	for g := 0; g < ds.Groups(); g++ {
		if len(ds.GroupIndices(g)) == 0 {
			return nil, fmt.Errorf("%w: group %d has no observations", ErrUndefinedEstimate, ds.Label(g))
		}

		events := ds.EventCount(g)
		exposure := ds.Exposure(g)

		est := model.Estimate{
			Group:    ds.Label(g),
			Events:   events,
			Exposure: exposure,
		}

		switch {
		case events == 0:
			// Boundary maximizer: λ̂ = 0. Reported, but flagged.
			est.Degenerate = true
			if degenerate == nil {
				degenerate = fmt.Errorf("%w: group %d has zero observed events", ErrUndefinedEstimate, ds.Label(g))
			}
		case exposure == 0:
			// All times zero: λ̂ diverges, equally unidentifiable.
			est.Degenerate = true
			if degenerate == nil {
				degenerate = fmt.Errorf("%w: group %d has zero total exposure", ErrUndefinedEstimate, ds.Label(g))
			}
		default:
			est.Rate = float64(events) / exposure
		}

		estimates[g] = est
	}

	return estimates, degenerate
}
