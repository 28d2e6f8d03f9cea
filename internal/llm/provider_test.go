package llm

import (
	"strings"
	"testing"
)

func TestBuildPrompt_CarriesReportValues(t *testing.T) {
	prompt, allowed := BuildPrompt(testReport())

	for _, want := range []string{"trial", "0.0667", "0.0563", "0.0117", "0.1552", "17.7697"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Every value stated in the prompt must be allowlisted
	for _, num := range []string{"0.0667", "0.0563", "0.0117", "0.1552", "17.7697", "30"} {
		if !numberAllowed(num, allowed) {
			t.Errorf("expected %q to be allowed", num)
		}
	}
}

func TestFlaggedNumbers(t *testing.T) {
	allowed := []string{"0.0563", "0.1552"}

	flagged := flaggedNumbers("median 0.0563, upper 0.1552, and an invented 0.9999", allowed)
	if len(flagged) != 1 || flagged[0] != "0.9999" {
		t.Errorf("expected only 0.9999 flagged, got %v", flagged)
	}

	// Shortened roundings of allowed values pass; bare integers are ignored
	flagged = flaggedNumbers("about 0.05 of the 3 groups over 95 percent", []string{"0.0563"})
	if len(flagged) != 0 {
		t.Errorf("expected no flags, got %v", flagged)
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "gemini"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	p, err := NewProvider(Config{Provider: ""})
	if err != nil {
		t.Errorf("empty provider must not error, got %v", err)
	}
	if p != nil {
		t.Error("empty provider must return nil (disabled)")
	}
}
