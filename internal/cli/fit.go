package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/grekov/survfit/internal/model"
	"github.com/grekov/survfit/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	maxBytes    int64
	noCache     bool
	noFooter    bool
	chains      int
	burnin      int
	samples     int
	seed        uint64
	priorShape  float64
	priorRate   float64
	gridMax     float64
	gridPoints  int
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// fitCmd represents the fit command
var fitCmd = &cobra.Command{
	Use:   "fit <data>",
	Short: "Fit an exponential survival model to one dataset",
	Long: `Fit loads a time-to-event dataset (local file or URL) and:
- Parses time, event/censoring indicator, and optional group columns
- Diagnoses censoring load, small groups, and prior weight
- Computes the closed-form MLE rate per group
- Runs independent Gibbs chains with censored-time augmentation
- Summarizes posterior rates and survival bands with 95% intervals

Example:
  survfit fit trial.csv
  survfit fit trial.csv --json report.json --md report.md
  survfit fit trial.csv --chains 4 --samples 10000 --seed 7
  survfit fit https://example.com/remission.csv --prior-shape 2 --prior-rate 10
  survfit fit trial.csv --llm --llm-provider ollama`,
	Args: cobra.ExactArgs(1),
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)

	// Output flags
	fitCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	fitCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	fitCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Sampler flags
	fitCmd.Flags().IntVar(&chains, "chains", 3, "number of independent chains")
	fitCmd.Flags().IntVar(&burnin, "burnin", 1000, "burn-in sweeps discarded per chain")
	fitCmd.Flags().IntVar(&samples, "samples", 5000, "retained sweeps per chain")
	fitCmd.Flags().Uint64Var(&seed, "seed", 1, "base random seed (chain i uses seed+i)")
	fitCmd.Flags().Float64Var(&priorShape, "prior-shape", 0.01, "Gamma prior shape")
	fitCmd.Flags().Float64Var(&priorRate, "prior-rate", 0.01, "Gamma prior rate")

	// Grid flags
	fitCmd.Flags().Float64Var(&gridMax, "grid-max", 0, "survival grid upper bound (0 = twice the largest observed time)")
	fitCmd.Flags().IntVar(&gridPoints, "grid-points", 101, "number of survival grid points")

	// Input flags
	fitCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall fit timeout")
	fitCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max input bytes to read")
	fitCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fit)")

	// LLM flags
	fitCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	fitCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	fitCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runFit(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Fitting: %s\n", source)
		fmt.Fprintf(os.Stderr, "Chains: %d, burn-in: %d, samples: %d, seed: %d\n", chains, burnin, samples, seed)
		fmt.Fprintf(os.Stderr, "Prior: Gamma(%g, %g)\n", priorShape, priorRate)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildFitConfig()
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg)

	result, err := p.Fit(ctx, source)
	if err != nil {
		return fmt.Errorf("fit failed: %w", err)
	}

	if verbose {
		report := result.Report
		if result.FromCache {
			fmt.Fprintf(os.Stderr, "✓ Served from cache\n")
		}
		fmt.Fprintf(os.Stderr, "✓ Loaded %d observations (%d censored, %d groups)\n",
			report.Data.Rows, report.Data.Censored, report.Data.Groups)
		fmt.Fprintf(os.Stderr, "✓ Pooled %d posterior draws\n", report.Settings.Chains*report.Settings.Samples)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(result.Report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildFitConfig merges defaults with the fit command's flags
func buildFitConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Data.Timeout = timeout
	cfg.Data.MaxBodyBytes = maxBytes
	cfg.Prior.Shape = priorShape
	cfg.Prior.Rate = priorRate
	cfg.MCMC.Chains = chains
	cfg.MCMC.Burnin = burnin
	cfg.MCMC.Samples = samples
	cfg.MCMC.Seed = seed
	cfg.Grid.Max = gridMax
	cfg.Grid.Points = gridPoints
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.StrictNumbers = true // Always enforce

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}
