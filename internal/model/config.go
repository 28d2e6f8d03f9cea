package model

import "time"

// Config is the full runtime configuration, assembled from defaults, the
// config file, environment variables and CLI flags
type Config struct {
	Data        DataConfig        `yaml:"data"`
	Prior       PriorConfig       `yaml:"prior"`
	MCMC        MCMCConfig        `yaml:"mcmc"`
	Grid        GridConfig        `yaml:"grid"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
	LLM         LLMConfig         `yaml:"llm"`
}

// DataConfig controls dataset loading
type DataConfig struct {
	Timeout      time.Duration `yaml:"timeout"`        // Overall load timeout (URLs)
	MaxBodyBytes int64         `yaml:"max_body_bytes"` // Max bytes to read from a source
}

// PriorConfig holds the Gamma prior hyperparameters for the rate
type PriorConfig struct {
	Shape float64 `yaml:"shape"`
	Rate  float64 `yaml:"rate"`
}

// MCMCConfig controls the Gibbs sampler run
type MCMCConfig struct {
	Chains  int    `yaml:"chains"`
	Burnin  int    `yaml:"burnin"`
	Samples int    `yaml:"samples"` // Retained sweeps per chain
	Seed    uint64 `yaml:"seed"`    // Base seed; chain i uses Seed+i
}

// GridConfig controls the survival prediction grid
type GridConfig struct {
	Max    float64 `yaml:"max"`    // Upper end of the grid; 0 means 2x max observed time
	Points int     `yaml:"points"` // Number of grid points
}

// CacheConfig controls result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Directory string        `yaml:"directory"` // Disk cache directory ("" for default)
	TTL       time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig controls worker counts
type ConcurrencyConfig struct {
	ChainWorkers int `yaml:"chain_workers"` // Concurrent chains per fit (0: all chains)
	BatchWorkers int `yaml:"batch_workers"` // Concurrent fits in batch mode
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider      string `yaml:"provider"` // "openai", "ollama", "" (disabled)
	Model         string `yaml:"model"`
	APIKey        string `yaml:"-"` // Never persisted; from environment
	BaseURL       string `yaml:"base_url"`
	Timeout       int    `yaml:"timeout"` // seconds
	StrictNumbers bool   `yaml:"strict_numbers"`
	MaxTokens     int    `yaml:"max_tokens"`
}

// DefaultConfig returns the built-in defaults: a weakly-informative
// Gamma(0.01, 0.01) prior, 3 chains of 1000 burn-in + 5000 retained sweeps,
// and a 101-point grid sized from the data
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Timeout:      2 * time.Minute,
			MaxBodyBytes: 10_000_000,
		},
		Prior: PriorConfig{
			Shape: 0.01,
			Rate:  0.01,
		},
		MCMC: MCMCConfig{
			Chains:  3,
			Burnin:  1000,
			Samples: 5000,
			Seed:    1,
		},
		Grid: GridConfig{
			Max:    0,
			Points: 101,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			ChainWorkers: 0,
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Provider:      "",
			Timeout:       30,
			StrictNumbers: true,
			MaxTokens:     1000,
		},
	}
}
