package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/grekov/survfit/internal/model"
	"github.com/grekov/survfit/internal/worker"
)

// Fitter runs a full fit over a single data source
type Fitter interface {
	Fit(ctx context.Context, source string) (*FitResult, error)
}

// FitJob fits one data source
type FitJob struct {
	Source string
	Fitter Fitter
}

// Execute runs the fit job
func (j *FitJob) Execute(ctx context.Context) worker.Result {
	result, err := j.Fitter.Fit(ctx, j.Source)
	if err != nil {
		return &BatchResult{Source: j.Source, Error: err}
	}
	return &BatchResult{Source: j.Source, Report: result.Report}
}

// BatchResult is the outcome of fitting one source in a batch
type BatchResult struct {
	Source string
	Report *model.FitReport
	Error  error
}

// GetError returns the error from the batch result
func (r *BatchResult) GetError() error {
	return r.Error
}

// BatchProcessor fits multiple data sources concurrently
type BatchProcessor struct {
	fitter      Fitter
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(fitter Fitter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		fitter:      fitter,
		concurrency: concurrency,
	}
}

// ProcessSources fits multiple sources concurrently. Every source gets
// exactly one result; sources whose fit never completed (the context
// expired before a worker reached them) come back with an error rather
// than being dropped.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*BatchResult {
	if len(sources) == 0 {
		return []*BatchResult{}
	}

	pool := worker.NewPool(ctx, b.concurrency)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&FitJob{Source: source, Fitter: b.fitter})
	}

	results := pool.Wait()

	batchResults := make([]*BatchResult, 0, len(sources))
	completed := make(map[string]bool, len(results))
	for _, result := range results {
		r := result.(*BatchResult)
		completed[r.Source] = true
		batchResults = append(batchResults, r)
	}

	for _, source := range sources {
		if completed[source] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = errors.New("fit never completed")
		}
		batchResults = append(batchResults, &BatchResult{
			Source: source,
			Error:  fmt.Errorf("aborted: %w", err),
		})
	}

	return batchResults
}

// ProcessFile reads data sources from a file and fits them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*BatchResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads data source paths or URLs from a file (one per
// line, # comments and duplicates skipped)
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
