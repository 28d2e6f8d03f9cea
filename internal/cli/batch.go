package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grekov/survfit/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// noCache, noFooter, and the sampler flags are defined in fit.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fit multiple datasets from a list file in parallel",
	Long: `Batch fits multiple datasets concurrently:
- Read data source paths or URLs from the input file (one per line)
- Fit sources in parallel with a configurable worker count
- Each fit runs its own chains with the same sampler settings
- Generate individual JSON and Markdown reports per source

Example:
  survfit batch datasets.txt
  survfit batch datasets.txt --concurrency 8 --output-dir ./reports
  survfit batch datasets.txt --chains 4 --samples 10000`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent fits")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./survfit-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from fit command
	batchCmd.Flags().DurationVar(&timeout, "fit-timeout", 2*time.Minute, "timeout for individual fits")
	batchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max input bytes to read")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fits)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Sampler flags
	batchCmd.Flags().IntVar(&chains, "chains", 3, "number of independent chains per fit")
	batchCmd.Flags().IntVar(&burnin, "burnin", 1000, "burn-in sweeps discarded per chain")
	batchCmd.Flags().IntVar(&samples, "samples", 5000, "retained sweeps per chain")
	batchCmd.Flags().Uint64Var(&seed, "seed", 1, "base random seed (chain i uses seed+i)")
	batchCmd.Flags().Float64Var(&priorShape, "prior-shape", 0.01, "Gamma prior shape")
	batchCmd.Flags().Float64Var(&priorRate, "prior-rate", 0.01, "Gamma prior rate")
	batchCmd.Flags().Float64Var(&gridMax, "grid-max", 0, "survival grid upper bound (0 = twice the largest observed time)")
	batchCmd.Flags().IntVar(&gridPoints, "grid-points", 101, "number of survival grid points")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Survfit Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := buildFitConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = concurrency
	// Leave chain parallelism to the batch workers
	cfg.Concurrency.ChainWorkers = 1
	cfg.Output.Verbose = false

	if llmEnabled {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmProvider, llmModel)
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg)
	processor := pipeline.NewBatchProcessor(p, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading sources from file...\n")
	sources, err := pipeline.ReadSourcesFromFile(file)
	if err != nil {
		return fmt.Errorf("read sources: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d sources\n", len(sources))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Fitting with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	results := processor.ProcessSources(ctx, sources)

	successCount := 0
	failureCount := 0

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		successCount++

		slug := sanitizeFilename(result.Report.Subject)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Source, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Source, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%d obs, %d groups)\n",
			result.Report.Subject, result.Report.Data.Rows, result.Report.Data.Groups)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}

	return s
}
