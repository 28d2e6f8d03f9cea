package mcmc

// Sample is one full posterior draw: a rate per group and, when a
// prediction grid was supplied, S(t) at each grid point per group
type Sample struct {
	Rates    []float64   // Rates[g] is the draw of λ for group g
	Survival [][]float64 // Survival[g][k] = S(grid[k]) under Rates[g]; nil without a grid
}

// Chain is the ordered output of one sampler run: a discarded burn-in
// prefix followed by the retained suffix. Append-only while running,
// read-only afterwards.
type Chain struct {
	Seed   uint64    // Seed of this chain's random stream
	Burnin int       // Length of the discarded prefix
	Grid   []float64 // Prediction grid the survival values were evaluated on

	samples []Sample
}

func newChain(seed uint64, burnin, capacity int, grid []float64) *Chain {
	return &Chain{
		Seed:    seed,
		Burnin:  burnin,
		Grid:    grid,
		samples: make([]Sample, 0, capacity),
	}
}

func (c *Chain) append(s Sample) {
	c.samples = append(c.samples, s)
}

// Len returns the total number of recorded sweeps, burn-in included
func (c *Chain) Len() int {
	return len(c.samples)
}

// Retained returns the post-burn-in draws. The returned slice shares the
// chain's backing array and must not be modified.
func (c *Chain) Retained() []Sample {
	if c.Burnin >= len(c.samples) {
		return nil
	}
	return c.samples[c.Burnin:]
}

// All returns every recorded sweep, for callers running their own
// diagnostics on the raw chain
func (c *Chain) All() []Sample {
	return c.samples
}

// Pool concatenates the retained draws of several chains in chain order.
// Chains are combined only after all runs complete; no incremental merge.
func Pool(chains ...*Chain) []Sample {
	var pooled []Sample
	for _, c := range chains {
		pooled = append(pooled, c.Retained()...)
	}
	return pooled
}
