package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/grekov/survfit/internal/model"
)

func testReport() model.FitReport {
	return model.FitReport{
		Subject: "trial",
		Data:    model.DataMeta{Rows: 3, Censored: 1, Groups: 1},
		Settings: model.FitSettings{
			PriorShape: 0.01, PriorRate: 0.01,
			Chains: 3, Burnin: 1000, Samples: 5000, Seed: 1,
		},
		MLE: []model.Estimate{
			{Group: 0, Rate: 0.0667, Events: 2, Exposure: 30},
		},
		Parameters: []model.ParameterSummary{
			{Group: 0, Median: 0.0563, Lower: 0.0117, Upper: 0.1552, Mean: 0.067, MeanLife: 17.7697},
		},
	}
}

func ollamaServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.URL.Path != "/api/generate" {
			t.Errorf("expected path /api/generate, got %s", r.URL.Path)
		}
		resp := ollamaResponse{
			Model:           "llama3.1",
			Response:        response,
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOllamaProvider_Summarize(t *testing.T) {
	server := ollamaServer(t, "The posterior median rate is 0.0563 with interval [0.0117, 0.1552].")
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL:       server.URL,
		Model:         "llama3.1",
		Timeout:       5,
		StrictNumbers: true,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Report: testReport()})
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}

	if !strings.Contains(resp.Summary, "0.0563") {
		t.Errorf("unexpected summary: %s", resp.Summary)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("expected 30 tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_StrictNumbersRejectsInvention(t *testing.T) {
	// 0.1234 appears nowhere in the report
	server := ollamaServer(t, "The rate is definitely 0.1234.")
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL:       server.URL,
		Timeout:       5,
		StrictNumbers: true,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Report: testReport()})
	if err == nil {
		t.Fatal("expected strict-numbers rejection")
	}
	if !strings.Contains(err.Error(), "0.1234") {
		t.Errorf("expected the invented value in the error, got: %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := ollamaServer(t, "ok")
	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("expected provider to be available while the server is up")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("expected provider to be unavailable after the server closed")
	}
}

func TestSummarizer_GenerateSummary(t *testing.T) {
	server := ollamaServer(t, "The posterior median rate is 0.0563 with interval [0.0117, 0.1552].")
	defer server.Close()

	s, err := NewSummarizer(Config{
		Provider:      "ollama",
		BaseURL:       server.URL,
		Timeout:       5,
		StrictNumbers: true,
	})
	if err != nil {
		t.Fatalf("failed to create summarizer: %v", err)
	}

	summary, err := s.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Fatalf("generate summary failed: %v", err)
	}
	if !summary.Enabled || summary.Provider != "ollama" {
		t.Errorf("unexpected summary metadata: %+v", summary)
	}
	if !strings.Contains(summary.SummaryMD, "0.0563") {
		t.Errorf("unexpected summary text: %s", summary.SummaryMD)
	}
}

func TestSummarizer_UnavailableProviderFailsFast(t *testing.T) {
	server := ollamaServer(t, "never reached")
	s, err := NewSummarizer(Config{Provider: "ollama", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create summarizer: %v", err)
	}
	server.Close()

	_, err = s.GenerateSummary(context.Background(), testReport())
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Errorf("expected an availability error, got: %v", err)
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Report: testReport()})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("expected the API error to surface, got: %v", err)
	}
}
