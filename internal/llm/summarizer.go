package llm

import (
	"context"
	"fmt"

	"github.com/grekov/survfit/internal/model"
)

// Summarizer drives an optional narrative generation for fit reports
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer for the configured provider.
// Returns an error when the provider is unknown or misconfigured.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is wired up
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// GenerateSummary produces the narrative for a report. A strict-numbers
// rejection is returned as an error; callers degrade it to a warning.
// The provider is probed first so an unreachable endpoint fails fast
// instead of surfacing as a generation error.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.FitReport) (*model.LLMSummary, error) {
	if !s.provider.IsAvailable(ctx) {
		return nil, fmt.Errorf("LLM provider %s is not available", s.provider.Name())
	}

	prompt, allowed := BuildPrompt(report)

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:         report,
		AllowedNumbers: allowed,
		Prompt:         prompt,
		Model:          s.config.Model,
		MaxTokens:      s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	return &model.LLMSummary{
		Enabled:       true,
		Provider:      s.provider.Name(),
		Model:         resp.Model,
		StrictNumbers: s.config.StrictNumbers,
		SummaryMD:     resp.Summary,
	}, nil
}

// RenderSeparateMarkdown renders the narrative as a standalone Markdown
// document, clearly marked as non-authoritative
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	md := "# Narrative Summary (LLM-generated)\n\n"
	md += fmt.Sprintf("_Generated by %s/%s. This text restates the fit report; the JSON report is authoritative._\n\n", summary.Provider, summary.Model)
	md += summary.SummaryMD + "\n"

	if len(summary.Warnings) > 0 {
		md += "\n## Warnings\n\n"
		for _, w := range summary.Warnings {
			md += fmt.Sprintf("- %s\n", w)
		}
	}

	return md
}
