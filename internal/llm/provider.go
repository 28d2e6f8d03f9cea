// Package llm generates an optional plain-language narrative of a fit
// report. The narrative never feeds back into estimation; strict-numbers
// mode additionally rejects responses that invent values not present in
// the report.
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/grekov/survfit/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative of the report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the fit report to narrate
	Report model.FitReport

	// AllowedNumbers is the STRICT allowlist of formatted values the LLM
	// may state. Responses containing other decimal values are rejected
	// to prevent invented estimates.
	AllowedNumbers []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's narrative output
type SummarizeResponse struct {
	// Summary is the generated narrative text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible servers)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictNumbers enforces the numeric allowlist (should always be true)
	StrictNumbers bool

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "", // Disabled by default
		Model:         "",
		Timeout:       30,
		StrictNumbers: true,
		MaxTokens:     1000,
	}
}

// fmtNum formats a value the same way the prompt and the allowlist do,
// so verification compares like with like
func fmtNum(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// BuildPrompt constructs the default narration prompt and the allowlist of
// numbers it contains
func BuildPrompt(report model.FitReport) (string, []string) {
	var allowed []string
	allow := func(v float64) string {
		s := fmtNum(v)
		allowed = append(allowed, s)
		return s
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are narrating a survival-model fit report. The model is a one-parameter exponential hazard fitted to time-to-event data with right censoring.

CRITICAL RULES:
1. You MUST ONLY state numeric values that appear below. Do not compute,
   extrapolate or invent new values.
2. Describe uncertainty using the given 95%% intervals; never sharpen them.
3. If a group is flagged degenerate or a signal is critical, say so plainly.
4. Do not speculate about causes or clinical meaning of the data.

Report:
- Subject: %s
- Observations: %d (%d censored) in %d group(s)
- Chains: %d, burn-in %d, retained %d per chain
`, report.Subject, report.Data.Rows, report.Data.Censored, report.Data.Groups,
		report.Settings.Chains, report.Settings.Burnin, report.Settings.Samples)

	for _, est := range report.MLE {
		fmt.Fprintf(&b, "- Group %d MLE rate: %s (%d events over %s person-time)",
			est.Group, allow(est.Rate), est.Events, allow(est.Exposure))
		if est.Degenerate {
			b.WriteString(" [degenerate: no observed events]")
		}
		b.WriteString("\n")
	}

	for _, p := range report.Parameters {
		fmt.Fprintf(&b, "- Group %d posterior rate: median %s, 95%% interval [%s, %s], mean life %s\n",
			p.Group, allow(p.Median), allow(p.Lower), allow(p.Upper), allow(p.MeanLife))
	}

	if len(report.Signals) > 0 {
		b.WriteString("\nKey signals:\n")
		for i, signal := range report.Signals {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", signal.Type, signal.Severity, signal.Description)
		}
	}

	b.WriteString("\nProvide a 3-5 sentence summary of what was estimated and how certain it is.")

	return b.String(), allowed
}

// decimalPattern matches decimal numbers with a fractional part; plain
// integers are left alone so counts in prose are not flagged
var decimalPattern = regexp.MustCompile(`\d+\.\d+`)

// flaggedNumbers returns the decimal values in text that are not covered
// by the allowlist (directly or as a shortened rounding of an allowed
// value)
func flaggedNumbers(text string, allowed []string) []string {
	seen := make(map[string]bool)
	var flagged []string

	for _, num := range decimalPattern.FindAllString(text, -1) {
		if seen[num] {
			continue
		}
		seen[num] = true
		if !numberAllowed(num, allowed) {
			flagged = append(flagged, num)
		}
	}

	return flagged
}

func numberAllowed(num string, allowed []string) bool {
	for _, a := range allowed {
		if num == a || strings.HasPrefix(a, num) {
			return true
		}
	}
	return false
}
