package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/grekov/survfit/internal/mcmc"
	"github.com/grekov/survfit/internal/model"
)

// ChainJob runs one MCMC chain with its own seed. The dataset is shared
// read-only across jobs; each chain owns its random stream.
type ChainJob struct {
	Index   int
	Seed    uint64
	Sampler *mcmc.Sampler
	Dataset *model.Dataset
}

// Execute runs the chain
func (j *ChainJob) Execute(ctx context.Context) Result {
	chain, err := j.Sampler.Run(ctx, j.Dataset, j.Seed)
	return &ChainResult{
		Index: j.Index,
		Chain: chain,
		Err:   err,
	}
}

// ChainResult is the outcome of one chain run
type ChainResult struct {
	Index int
	Chain *mcmc.Chain
	Err   error
}

// GetError returns the error from the chain run
func (r *ChainResult) GetError() error {
	return r.Err
}

// RunChains executes n independent chains concurrently, seeding chain i
// with baseSeed+i, and returns the chains in chain order. A workers value
// of 0 (or >= n) runs all chains at once. The first failed chain aborts
// the whole run.
func RunChains(ctx context.Context, s *mcmc.Sampler, ds *model.Dataset, n int, baseSeed uint64, workers int) ([]*mcmc.Chain, error) {
	if n < 1 {
		return nil, fmt.Errorf("worker: at least one chain required, got %d", n)
	}
	if workers <= 0 || workers > n {
		workers = n
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	for i := 0; i < n; i++ {
		pool.Submit(&ChainJob{
			Index:   i,
			Seed:    baseSeed + uint64(i),
			Sampler: s,
			Dataset: ds,
		})
	}

	results := pool.Wait()
	if len(results) != n {
		// The pool was canceled before every chain reported
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("worker: chain run canceled: %w", err)
		}
		return nil, fmt.Errorf("worker: expected %d chain results, got %d", n, len(results))
	}

	chainResults := make([]*ChainResult, len(results))
	for i, r := range results {
		chainResults[i] = r.(*ChainResult)
	}
	sort.Slice(chainResults, func(i, j int) bool {
		return chainResults[i].Index < chainResults[j].Index
	})

	chains := make([]*mcmc.Chain, n)
	for _, r := range chainResults {
		if r.Err != nil {
			return nil, fmt.Errorf("worker: chain %d: %w", r.Index, r.Err)
		}
		chains[r.Index] = r.Chain
	}

	return chains, nil
}
