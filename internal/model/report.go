package model

import "time"

// FitReport is the complete result of one fitting run: maximum-likelihood
// estimates, posterior summaries over the retained draws, survival curves on
// the prediction grid, and data-quality signals
type FitReport struct {
	Subject  string    `json:"subject"`   // Subject of the fit (derived from the input name)
	Source   string    `json:"source"`    // File path or URL that was loaded
	FittedAt time.Time `json:"fitted_at"` // When the fit was run

	Data     DataMeta    `json:"data"`     // Input metadata
	Settings FitSettings `json:"settings"` // Prior and sweep configuration used
	Signals  []Signal    `json:"signals,omitempty"`

	MLE        []Estimate         `json:"mle"`                  // Closed-form per-group estimates
	Parameters []ParameterSummary `json:"parameters,omitempty"` // Posterior rate summaries
	Curves     []SurvivalCurve    `json:"curves,omitempty"`     // Posterior survival bands

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (never affects results)
}

// DataMeta describes the loaded dataset
type DataMeta struct {
	Rows     int   `json:"rows"`
	Censored int   `json:"censored"`
	Groups   int   `json:"groups"`
	Labels   []int `json:"labels,omitempty"` // Original group labels, index order
}

// FitSettings records the sampler configuration a report was produced with
type FitSettings struct {
	PriorShape float64   `json:"prior_shape"`
	PriorRate  float64   `json:"prior_rate"`
	Chains     int       `json:"chains"`
	Burnin     int       `json:"burnin"`
	Samples    int       `json:"samples"`
	Seed       uint64    `json:"seed"`
	Grid       []float64 `json:"grid,omitempty"`
}

// Estimate is a closed-form maximum-likelihood estimate for one group
type Estimate struct {
	Group      int     `json:"group"`      // Original group label
	Rate       float64 `json:"rate"`       // λ̂ = events / exposure
	Events     int     `json:"events"`     // Uncensored event count
	Exposure   float64 `json:"exposure"`   // Total person-time at risk
	Degenerate bool    `json:"degenerate"` // True when the group has zero events (boundary estimate)
}

// ParameterSummary summarizes the posterior draws of one group's rate
type ParameterSummary struct {
	Group    int     `json:"group"`  // Original group label
	Median   float64 `json:"median"` // Posterior median of λ
	Lower    float64 `json:"lower"`  // 2.5th percentile
	Upper    float64 `json:"upper"`  // 97.5th percentile
	Mean     float64 `json:"mean"`
	MeanLife float64 `json:"mean_life"` // μ = 1 / median(λ)
}

// CurvePoint is one grid point of a posterior survival band
type CurvePoint struct {
	T      float64 `json:"t"`
	Lower  float64 `json:"lower"`
	Median float64 `json:"median"`
	Upper  float64 `json:"upper"`
}

// SurvivalCurve is the posterior survival band of one group over the
// prediction grid
type SurvivalCurve struct {
	Group  int          `json:"group"` // Original group label
	Points []CurvePoint `json:"points"`
}

// Signal is a diagnostic about the input data or model identifiability,
// with transparent supporting data. Signals never change the fit.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalCensoringFraction SignalType = "censoring_fraction" // Share of censored observations
	SignalZeroEventGroup    SignalType = "zero_event_group"   // Group with no observed events
	SignalSmallGroup        SignalType = "small_group"        // Group with very few observations
	SignalPriorWeight       SignalType = "prior_weight"       // Prior pseudo-counts vs data counts
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains an optional LLM-generated narrative of the report.
// It never affects estimates and is clearly separated.
type LLMSummary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"` // openai, ollama
	Model         string   `json:"model,omitempty"`
	StrictNumbers bool     `json:"strict_numbers"` // Whether numeric-restatement enforcement was enabled
	SummaryMD     string   `json:"summary_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"` // Issues such as invented numbers detected
}
