// Package pipeline wires the fitting engine together: load a dataset,
// diagnose it, estimate by maximum likelihood, sample the posterior over
// concurrent chains, summarize, and render.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/grekov/survfit/internal/cache"
	"github.com/grekov/survfit/internal/diagnose"
	"github.com/grekov/survfit/internal/fit"
	"github.com/grekov/survfit/internal/llm"
	"github.com/grekov/survfit/internal/mcmc"
	"github.com/grekov/survfit/internal/model"
	"github.com/grekov/survfit/internal/reader"
	"github.com/grekov/survfit/internal/summary"
	"github.com/grekov/survfit/internal/worker"
)

// Pipeline orchestrates the complete fitting process
type Pipeline struct {
	loader     *reader.Loader
	checker    *diagnose.Checker
	renderer   *Renderer
	resultC    cache.Cache     // nil when caching is disabled
	summarizer *llm.Summarizer // nil when LLM narration is disabled
	config     *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var resultC cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Directory
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = filepath.Join(home, ".survfit", "cache")
			}
		}
		if dir != "" {
			resultC = cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL)
		}
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		loader:     reader.NewLoader(cfg.Data.Timeout, cfg.Data.MaxBodyBytes),
		checker:    diagnose.NewChecker(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		resultC:    resultC,
		summarizer: summarizer,
		config:     cfg,
	}
}

// FitResult contains the complete fit outcome. Chains carries the raw
// retained draws for callers running their own diagnostics; it is nil
// when the report was served from cache.
type FitResult struct {
	Report    *model.FitReport
	Chains    []*mcmc.Chain
	FromCache bool
}

// Fit loads the named source and runs the full engine over it
func (p *Pipeline) Fit(ctx context.Context, source string) (*FitResult, error) {
	loaded, err := p.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	ds := loaded.Dataset

	settings := p.buildSettings(ds)

	// Identical data + settings means identical output; serve from cache
	key := cache.RunKey(loaded.Raw, settings)
	if p.resultC != nil {
		if data, found := p.resultC.Get(key); found {
			var report model.FitReport
			if err := json.Unmarshal(data, &report); err == nil {
				return &FitResult{Report: &report, FromCache: true}, nil
			}
			// A corrupt entry is dropped, not served
			_ = p.resultC.Delete(key)
		}
	}

	signals := p.checker.Check(ds, mcmc.Prior{Shape: settings.PriorShape, Rate: settings.PriorRate})

	estimates, err := fit.Fit(ds)
	if err != nil && !errors.Is(err, fit.ErrUndefinedEstimate) {
		return nil, fmt.Errorf("mle: %w", err)
	}
	if err != nil {
		// Degenerate groups are already surfaced as critical signals; the
		// Bayesian fit still runs, leaning on imputation and the prior
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	chains, err := p.runChains(ctx, ds, settings)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	pooled := mcmc.Pool(chains...)

	params, err := summary.Rates(pooled, ds.Groups(), ds.Label)
	if err != nil {
		return nil, fmt.Errorf("summarize rates: %w", err)
	}
	curves, err := summary.Curves(pooled, settings.Grid, ds.Groups(), ds.Label)
	if err != nil {
		return nil, fmt.Errorf("summarize curves: %w", err)
	}

	labels := make([]int, ds.Groups())
	for g := range labels {
		labels[g] = ds.Label(g)
	}

	report := &model.FitReport{
		Subject:  loaded.Subject,
		Source:   loaded.Source,
		FittedAt: time.Now().UTC(),
		Data: model.DataMeta{
			Rows:     ds.Len(),
			Censored: ds.CensoredCount(),
			Groups:   ds.Groups(),
			Labels:   labels,
		},
		Settings:   settings,
		Signals:    signals,
		MLE:        estimates,
		Parameters: params,
		Curves:     curves,
	}

	// Narration runs AFTER all estimation and never affects it
	if p.summarizer.IsEnabled() {
		llmSummary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary generation failed: %v\n", err)
		} else {
			report.LLM = llmSummary
		}
	}

	if p.resultC != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := p.resultC.Set(key, data, p.config.Cache.TTL); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to cache report: %v\n", err)
			}
		}
	}

	return &FitResult{Report: report, Chains: chains}, nil
}

// runChains executes the configured number of independent chains over the
// shared dataset, with throttled progress when verbose
func (p *Pipeline) runChains(ctx context.Context, ds *model.Dataset, settings model.FitSettings) ([]*mcmc.Chain, error) {
	samplerCfg := mcmc.SamplerConfig{
		Prior:   mcmc.Prior{Shape: settings.PriorShape, Rate: settings.PriorRate},
		Burnin:  settings.Burnin,
		Samples: settings.Samples,
		Grid:    settings.Grid,
	}

	if p.config.Output.Verbose {
		total := settings.Chains * (settings.Burnin + settings.Samples)
		progress := worker.NewProgress(total, 4, func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rSampling: %d/%d sweeps", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		})
		samplerCfg.Progress = func(done, total int) { progress.Tick() }
	}

	sampler, err := mcmc.NewSampler(samplerCfg)
	if err != nil {
		return nil, err
	}

	return worker.RunChains(ctx, sampler, ds, settings.Chains, settings.Seed, p.config.Concurrency.ChainWorkers)
}

// buildSettings resolves the run settings, sizing the prediction grid
// from the data when the caller did not fix it
func (p *Pipeline) buildSettings(ds *model.Dataset) model.FitSettings {
	cfg := p.config

	settings := model.FitSettings{
		PriorShape: cfg.Prior.Shape,
		PriorRate:  cfg.Prior.Rate,
		Chains:     cfg.MCMC.Chains,
		Burnin:     cfg.MCMC.Burnin,
		Samples:    cfg.MCMC.Samples,
		Seed:       cfg.MCMC.Seed,
	}

	points := cfg.Grid.Points
	max := cfg.Grid.Max
	if max <= 0 {
		max = 2 * ds.MaxTime()
	}
	if points > 1 && max > 0 {
		grid := make([]float64, points)
		step := max / float64(points-1)
		for i := range grid {
			grid[i] = float64(i) * step
		}
		settings.Grid = grid
	}

	return settings
}

// RenderReport renders the report to the configured outputs
func (p *Pipeline) RenderReport(report *model.FitReport, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// The LLM narrative goes into its own file, clearly separated
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := trimExt(mdPath) + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Printf("✓ Wrote LLM summary: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}

func trimExt(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}
