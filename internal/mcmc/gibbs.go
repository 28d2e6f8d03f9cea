// Package mcmc implements a data-augmentation Gibbs sampler for the
// exponential hazard model with right-censored observations under a
// Gamma prior.
//
// Each sweep alternates two conditional draws. First, every censored
// observation's unknown failure time is imputed from an exponential
// distribution truncated below at its censoring threshold. The draw is
// exact by memorylessness, since the residual life beyond the threshold is itself
// exponential with the current rate. Second, with the data made complete,
// the Gamma prior is conjugate and each group's rate is drawn directly
// from Gamma(a₀ + n_g, b₀ + Σ times). There is no accept/reject step and
// no built-in convergence check; the caller fixes the sweep counts.
package mcmc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/grekov/survfit/internal/model"
	"github.com/grekov/survfit/internal/survival"
)

var (
	// ErrInvalidPrior reports non-positive Gamma hyperparameters
	ErrInvalidPrior = errors.New("mcmc: invalid prior")

	// ErrEmptyGroup reports a group with no observations, whose rate would
	// be drawn purely from the prior
	ErrEmptyGroup = errors.New("mcmc: empty group")
)

// Prior holds the Gamma(shape, rate) hyperparameters for every group's λ
type Prior struct {
	Shape float64
	Rate  float64
}

// SamplerConfig configures one sampler. The same sampler may run any
// number of independent chains.
type SamplerConfig struct {
	Prior   Prior
	Burnin  int       // Discarded sweeps per chain
	Samples int       // Retained sweeps per chain
	Grid    []float64 // Optional prediction grid for S(t); nil disables curves

	// Progress, when set, is called after every sweep with the number of
	// completed sweeps and the total. Called from the chain's goroutine.
	Progress func(done, total int)
}

// Sampler produces posterior chains of per-group exponential rates
type Sampler struct {
	cfg SamplerConfig
}

// NewSampler validates the configuration and returns a sampler
func NewSampler(cfg SamplerConfig) (*Sampler, error) {
	if !(cfg.Prior.Shape > 0) || !(cfg.Prior.Rate > 0) {
		return nil, fmt.Errorf("%w: shape %g, rate %g (both must be positive)",
			ErrInvalidPrior, cfg.Prior.Shape, cfg.Prior.Rate)
	}
	if cfg.Burnin < 0 {
		return nil, fmt.Errorf("mcmc: negative burn-in %d", cfg.Burnin)
	}
	if cfg.Samples < 1 {
		return nil, fmt.Errorf("mcmc: at least one retained sweep required, got %d", cfg.Samples)
	}
	for _, t := range cfg.Grid {
		if t < 0 || math.IsNaN(t) {
			return nil, fmt.Errorf("mcmc: invalid grid point %g", t)
		}
	}
	return &Sampler{cfg: cfg}, nil
}

// Run executes one chain with its own random stream seeded by seed.
// The dataset is only read; concurrent Run calls on the same dataset are
// safe. Cancellation is honored at sweep boundaries.
func (s *Sampler) Run(ctx context.Context, ds *model.Dataset, seed uint64) (*Chain, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("%w: dataset has no observations", ErrEmptyGroup)
	}
	for g := 0; g < ds.Groups(); g++ {
		if len(ds.GroupIndices(g)) == 0 {
			return nil, fmt.Errorf("%w: group %d", ErrEmptyGroup, ds.Label(g))
		}
	}

	src := rand.NewSource(seed)
	rng := rand.New(src)

	rates := s.initialRates(ds)
	times := s.initialTimes(ds, rates)

	total := s.cfg.Burnin + s.cfg.Samples
	chain := newChain(seed, s.cfg.Burnin, total, s.cfg.Grid)

	for sweep := 0; sweep < total; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("mcmc: chain canceled at sweep %d: %w", sweep, err)
		}

		s.impute(rng, ds, rates, times)

		for g := 0; g < ds.Groups(); g++ {
			indices := ds.GroupIndices(g)
			sum := 0.0
			for _, i := range indices {
				sum += times[i]
			}
			post := distuv.Gamma{
				Alpha: s.cfg.Prior.Shape + float64(len(indices)),
				Beta:  s.cfg.Prior.Rate + sum,
				Src:   src,
			}
			rates[g] = post.Rand()
		}

		chain.append(s.record(rates))

		if s.cfg.Progress != nil {
			s.cfg.Progress(sweep+1, total)
		}
	}

	return chain, nil
}

// impute redraws the latent failure time of every censored observation
// from Exponential(rate of its group) truncated below at its threshold.
// Uncensored entries of times are never touched.
func (s *Sampler) impute(rng *rand.Rand, ds *model.Dataset, rates, times []float64) {
	for i := 0; i < ds.Len(); i++ {
		obs := ds.Observation(i)
		if !obs.Censored {
			continue
		}
		times[i] = truncExp(rng, rates[obs.Group], obs.Time)
	}
}

// truncExp draws from an Exponential(rate) truncated below at threshold
// by inverse-CDF sampling of the residual life: u ~ U(0,1),
// t = threshold - ln(1-u)/rate. The result exceeds threshold strictly.
func truncExp(rng *rand.Rand, rate, threshold float64) float64 {
	u := rng.Float64()
	// Float64 is in [0,1); 1-u is in (0,1], so the log is finite and
	// -ln(1-u)/rate is >= 0, with equality only at u=0 measure-zero edge.
	// Nudge u=0 away so the draw stays strictly above the threshold.
	if u == 0 {
		u = math.SmallestNonzeroFloat64
	}
	return threshold - math.Log(1-u)/rate
}

// initialRates seeds each group's rate from its MLE where identifiable,
// falling back to the prior mean for degenerate groups
func (s *Sampler) initialRates(ds *model.Dataset) []float64 {
	priorMean := s.cfg.Prior.Shape / s.cfg.Prior.Rate
	rates := make([]float64, ds.Groups())
	for g := range rates {
		events := ds.EventCount(g)
		exposure := ds.Exposure(g)
		if events > 0 && exposure > 0 {
			rates[g] = float64(events) / exposure
		} else {
			rates[g] = priorMean
		}
	}
	return rates
}

// initialTimes builds the complete-data working vector: observed event
// times as-is, censored entries started at threshold plus the mean
// residual life 1/λ₀ so the first conjugate update is on-scale
func (s *Sampler) initialTimes(ds *model.Dataset, rates []float64) []float64 {
	times := make([]float64, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		obs := ds.Observation(i)
		if obs.Censored {
			times[i] = obs.Time + 1/rates[obs.Group]
		} else {
			times[i] = obs.Time
		}
	}
	return times
}

// record snapshots the current rates and, when a grid is configured, the
// survival curve of each group at those rates
func (s *Sampler) record(rates []float64) Sample {
	sample := Sample{Rates: make([]float64, len(rates))}
	copy(sample.Rates, rates)

	if len(s.cfg.Grid) > 0 {
		sample.Survival = make([][]float64, len(rates))
		for g, rate := range rates {
			curve, err := survival.Curve(rate, s.cfg.Grid)
			if err != nil {
				// Gamma draws are strictly positive and the grid was
				// validated at construction; a domain error here means a
				// broken invariant, not caller input.
				panic(fmt.Sprintf("mcmc: survival evaluation failed: %v", err))
			}
			sample.Survival[g] = curve
		}
	}

	return sample
}
