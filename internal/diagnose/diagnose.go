// Package diagnose inspects a dataset and fit settings for
// identifiability problems before sampling: heavy censoring, groups with
// no events, tiny groups and priors that outweigh the data. Signals are
// advisory; they never alter the fit.
package diagnose

import (
	"fmt"

	"github.com/grekov/survfit/internal/mcmc"
	"github.com/grekov/survfit/internal/model"
)

// Checker generates data-quality signals
type Checker struct{}

// NewChecker creates a new checker
func NewChecker() *Checker {
	return &Checker{}
}

const smallGroupSize = 5

// Check runs all diagnostics and returns the signals found
func (c *Checker) Check(ds *model.Dataset, prior mcmc.Prior) []model.Signal {
	var signals []model.Signal

	signals = append(signals, c.censoringFraction(ds))

	for g := 0; g < ds.Groups(); g++ {
		if s, ok := c.zeroEventGroup(ds, g); ok {
			signals = append(signals, s)
		}
		if s, ok := c.smallGroup(ds, g); ok {
			signals = append(signals, s)
		}
	}

	signals = append(signals, c.priorWeight(ds, prior))

	return signals
}

// censoringFraction flags datasets where most of the information is
// censored: above 50% the likelihood thins out, above 90% the posterior
// is dominated by imputation
func (c *Checker) censoringFraction(ds *model.Dataset) model.Signal {
	censored := ds.CensoredCount()
	fraction := float64(censored) / float64(ds.Len())

	severity := model.SeverityInfo
	if fraction > 0.9 {
		severity = model.SeverityCritical
	} else if fraction > 0.5 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalCensoringFraction,
		Severity:    severity,
		Description: fmt.Sprintf("Censored fraction: %.2f", fraction),
		Data: map[string]interface{}{
			"censored": censored,
			"rows":     ds.Len(),
			"fraction": fraction,
		},
	}
}

// zeroEventGroup flags groups whose rate is unidentifiable from data:
// every observation censored, so the MLE sits on the boundary and the
// posterior leans entirely on imputation and the prior
func (c *Checker) zeroEventGroup(ds *model.Dataset, g int) (model.Signal, bool) {
	events := ds.EventCount(g)
	if events > 0 {
		return model.Signal{}, false
	}
	return model.Signal{
		Type:        model.SignalZeroEventGroup,
		Severity:    model.SeverityCritical,
		Description: fmt.Sprintf("Group %d has no observed events", ds.Label(g)),
		Data: map[string]interface{}{
			"group": ds.Label(g),
			"rows":  len(ds.GroupIndices(g)),
		},
	}, true
}

// smallGroup flags groups too small for a stable estimate
func (c *Checker) smallGroup(ds *model.Dataset, g int) (model.Signal, bool) {
	n := len(ds.GroupIndices(g))
	if n >= smallGroupSize {
		return model.Signal{}, false
	}
	return model.Signal{
		Type:        model.SignalSmallGroup,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Group %d has only %d observations", ds.Label(g), n),
		Data: map[string]interface{}{
			"group":   ds.Label(g),
			"rows":    n,
			"minimum": smallGroupSize,
		},
	}, true
}

// priorWeight compares the prior's pseudo-event count against the
// smallest group's observation count. A Gamma(a0, b0) prior acts like a0
// prior events over b0 units of exposure; when a0 rivals n the posterior
// is no longer data-driven.
func (c *Checker) priorWeight(ds *model.Dataset, prior mcmc.Prior) model.Signal {
	minGroup := ds.Len()
	for g := 0; g < ds.Groups(); g++ {
		if n := len(ds.GroupIndices(g)); n < minGroup {
			minGroup = n
		}
	}

	ratio := prior.Shape / float64(minGroup)
	severity := model.SeverityInfo
	description := fmt.Sprintf("Prior contributes %.4g pseudo-events against %d observations in the smallest group", prior.Shape, minGroup)
	if ratio > 0.1 {
		severity = model.SeverityWarning
		description += " (prior is informative at this sample size)"
	}

	return model.Signal{
		Type:        model.SignalPriorWeight,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"prior_shape":    prior.Shape,
			"prior_rate":     prior.Rate,
			"smallest_group": minGroup,
			"ratio":          ratio,
		},
	}
}
