package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grekov/survfit/internal/model"
)

// Renderer writes fit reports as JSON, Markdown, and a console summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.FitReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// RenderMarkdown writes the report as a human-readable Markdown document
func (r *Renderer) RenderMarkdown(report *model.FitReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(r.Markdown(report)), 0o644)
}

// Markdown renders the report body
func (r *Renderer) Markdown(report *model.FitReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Survival Fit: %s\n\n", report.Subject))
	sb.WriteString(fmt.Sprintf("**Source:** %s\n", report.Source))
	sb.WriteString(fmt.Sprintf("**Fitted:** %s\n\n", report.FittedAt.Format("2006-01-02 15:04:05 UTC")))

	sb.WriteString("## Data\n\n")
	sb.WriteString(fmt.Sprintf("- Observations: %d (%d censored)\n", report.Data.Rows, report.Data.Censored))
	sb.WriteString(fmt.Sprintf("- Groups: %d\n\n", report.Data.Groups))

	if len(report.Signals) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, sig := range report.Signals {
			sb.WriteString(fmt.Sprintf("- **[%s]** %s: %s\n", strings.ToUpper(string(sig.Severity)), sig.Type, sig.Description))
		}
		sb.WriteString("\n")
	}

	if len(report.MLE) > 0 {
		sb.WriteString("## Maximum Likelihood\n\n")
		sb.WriteString("| Group | Rate | Events | Exposure |\n")
		sb.WriteString("|-------|------|--------|----------|\n")
		for _, est := range report.MLE {
			rate := fmt.Sprintf("%.6g", est.Rate)
			if est.Degenerate {
				rate += " (degenerate)"
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %.6g |\n", est.Group, rate, est.Events, est.Exposure))
		}
		sb.WriteString("\n")
	}

	if len(report.Parameters) > 0 {
		sb.WriteString("## Posterior Rates\n\n")
		sb.WriteString("| Group | Median | 95% Interval | Mean | Mean Lifetime |\n")
		sb.WriteString("|-------|--------|--------------|------|---------------|\n")
		for _, p := range report.Parameters {
			sb.WriteString(fmt.Sprintf("| %d | %.6g | [%.6g, %.6g] | %.6g | %.6g |\n",
				p.Group, p.Median, p.Lower, p.Upper, p.Mean, p.MeanLife))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Prior: Gamma(%g, %g). Chains: %d, burn-in %d, retained %d per chain, seed %d.\n\n",
			report.Settings.PriorShape, report.Settings.PriorRate,
			report.Settings.Chains, report.Settings.Burnin, report.Settings.Samples, report.Settings.Seed))
	}

	if len(report.Curves) > 0 {
		sb.WriteString("## Survival Curves\n\n")
		for _, curve := range report.Curves {
			sb.WriteString(fmt.Sprintf("### Group %d\n\n", curve.Group))
			sb.WriteString("| t | Lower | Median | Upper |\n")
			sb.WriteString("|---|-------|--------|-------|\n")
			for _, pt := range curve.Points {
				sb.WriteString(fmt.Sprintf("| %.4g | %.4f | %.4f | %.4f |\n", pt.T, pt.Lower, pt.Median, pt.Upper))
			}
			sb.WriteString("\n")
		}
	}

	if r.includeFooter {
		sb.WriteString("---\n\n*Generated by survfit*\n")
	}

	return sb.String()
}

// RenderLLMMarkdown writes an already-rendered LLM narrative to its own file
func (r *Renderer) RenderLLMMarkdown(content, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// RenderSummary prints a compact console summary
func (r *Renderer) RenderSummary(report *model.FitReport) {
	fmt.Printf("\n%s\n", report.Subject)
	fmt.Printf("%d observations, %d censored, %d group(s)\n",
		report.Data.Rows, report.Data.Censored, report.Data.Groups)

	for _, sig := range report.Signals {
		if sig.Severity == model.SeverityInfo {
			continue
		}
		fmt.Printf("  %s %s\n", severityMark(sig.Severity), sig.Description)
	}

	for _, p := range report.Parameters {
		fmt.Printf("  group %d: rate %.6g  95%% [%.6g, %.6g]  mean lifetime %.6g\n",
			p.Group, p.Median, p.Lower, p.Upper, p.MeanLife)
	}
}

func severityMark(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "•"
	}
}
