package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grekov/survfit/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trial-arms.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.MCMC.Chains = 2
	cfg.MCMC.Burnin = 200
	cfg.MCMC.Samples = 500
	cfg.Grid.Points = 11
	return cfg
}

func TestPipeline_FitEndToEnd(t *testing.T) {
	path := writeTempCSV(t, "time,event\n5,1\n10,1\n15,0\n")

	p := NewPipeline(testConfig())
	result, err := p.Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FromCache {
		t.Error("expected fresh fit with caching disabled")
	}

	report := result.Report
	if report.Data.Rows != 3 {
		t.Errorf("expected 3 rows, got %d", report.Data.Rows)
	}
	if report.Data.Censored != 1 {
		t.Errorf("expected 1 censored, got %d", report.Data.Censored)
	}
	if report.Subject != "trial arms" {
		t.Errorf("expected subject 'trial arms', got %q", report.Subject)
	}

	if len(report.MLE) != 1 {
		t.Fatalf("expected 1 MLE estimate, got %d", len(report.MLE))
	}
	mle := report.MLE[0]
	if math.Abs(mle.Rate-2.0/30.0) > 1e-12 {
		t.Errorf("expected MLE 2/30, got %g", mle.Rate)
	}

	if len(report.Parameters) != 1 {
		t.Fatalf("expected 1 parameter summary, got %d", len(report.Parameters))
	}
	param := report.Parameters[0]
	if param.Lower >= param.Median || param.Median >= param.Upper {
		t.Errorf("interval not ordered: [%g, %g, %g]", param.Lower, param.Median, param.Upper)
	}
	// Posterior mean tracks the MLE under a weak prior
	if rel := math.Abs(param.Mean-mle.Rate) / mle.Rate; rel > 0.20 {
		t.Errorf("posterior mean %g too far from MLE %g (rel %.3f)", param.Mean, mle.Rate, rel)
	}

	if len(report.Curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(report.Curves))
	}
	curve := report.Curves[0]
	if len(curve.Points) != 11 {
		t.Errorf("expected 11 grid points, got %d", len(curve.Points))
	}
	// Default grid spans twice the largest observed time
	last := curve.Points[len(curve.Points)-1]
	if math.Abs(last.T-30.0) > 1e-9 {
		t.Errorf("expected grid to end at 30, got %g", last.T)
	}
	if curve.Points[0].Median != 1.0 {
		t.Errorf("expected S(0)=1 at grid start, got %g", curve.Points[0].Median)
	}

	if result.Chains == nil {
		t.Error("expected raw chains on a fresh fit")
	}
	if report.LLM != nil {
		t.Error("expected no LLM summary when disabled")
	}
}

func TestPipeline_FitReproducible(t *testing.T) {
	path := writeTempCSV(t, "time,event\n5,1\n10,1\n15,0\n")
	cfg := testConfig()

	first, err := NewPipeline(cfg).Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("first fit: %v", err)
	}
	second, err := NewPipeline(cfg).Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("second fit: %v", err)
	}

	a := first.Report.Parameters[0]
	b := second.Report.Parameters[0]
	if a.Median != b.Median || a.Lower != b.Lower || a.Upper != b.Upper {
		t.Errorf("same seed produced different summaries: %+v vs %+v", a, b)
	}
}

func TestPipeline_FitUsesCache(t *testing.T) {
	path := writeTempCSV(t, "time,event\n5,1\n10,1\n15,0\n")
	cfg := testConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Directory = t.TempDir()
	cfg.Cache.TTL = time.Hour

	p := NewPipeline(cfg)
	first, err := p.Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("first fit: %v", err)
	}
	if first.FromCache {
		t.Error("first fit should not come from cache")
	}

	second, err := p.Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("second fit: %v", err)
	}
	if !second.FromCache {
		t.Error("second identical fit should come from cache")
	}
	if second.Chains != nil {
		t.Error("cached result should not carry raw chains")
	}
	if second.Report.Parameters[0].Median != first.Report.Parameters[0].Median {
		t.Error("cached report differs from original")
	}

	// Changing a setting must miss the cache
	cfg.MCMC.Seed = 99
	third, err := NewPipeline(cfg).Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("third fit: %v", err)
	}
	if third.FromCache {
		t.Error("changed seed should not hit the cache")
	}
}

func TestPipeline_FitGroupedData(t *testing.T) {
	path := writeTempCSV(t, "time,event,group\n5,1,1\n8,1,1\n12,0,1\n3,1,2\n4,1,2\n6,0,2\n")

	result, err := NewPipeline(testConfig()).Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := result.Report
	if report.Data.Groups != 2 {
		t.Fatalf("expected 2 groups, got %d", report.Data.Groups)
	}
	if len(report.Parameters) != 2 || len(report.Curves) != 2 {
		t.Fatalf("expected per-group summaries, got %d params %d curves",
			len(report.Parameters), len(report.Curves))
	}
	if report.Parameters[0].Group != 1 || report.Parameters[1].Group != 2 {
		t.Errorf("expected original labels 1 and 2, got %d and %d",
			report.Parameters[0].Group, report.Parameters[1].Group)
	}
	// Group 2 fails faster, so its rate should be higher
	if report.Parameters[1].Median <= report.Parameters[0].Median {
		t.Errorf("expected group 2 rate above group 1: %g vs %g",
			report.Parameters[1].Median, report.Parameters[0].Median)
	}
}

func TestPipeline_FitMissingFile(t *testing.T) {
	_, err := NewPipeline(testConfig()).Fit(context.Background(), "/nonexistent/data.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRenderer_Markdown(t *testing.T) {
	path := writeTempCSV(t, "time,event\n5,1\n10,1\n15,0\n")

	result, err := NewPipeline(testConfig()).Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	md := NewRenderer(true).Markdown(result.Report)
	for _, want := range []string{
		"# Survival Fit: trial arms",
		"## Maximum Likelihood",
		"## Posterior Rates",
		"## Survival Curves",
		"*Generated by survfit*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	bare := NewRenderer(false).Markdown(result.Report)
	if strings.Contains(bare, "Generated by survfit") {
		t.Error("footer rendered when disabled")
	}
}

func TestRenderer_RenderJSON(t *testing.T) {
	path := writeTempCSV(t, "time,event\n5,1\n10,1\n15,0\n")

	result, err := NewPipeline(testConfig()).Fit(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "report.json")
	if err := NewRenderer(false).RenderJSON(result.Report, out); err != nil {
		t.Fatalf("render JSON: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"prior_shape"`) {
		t.Error("JSON output missing settings")
	}
}
