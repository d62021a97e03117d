package model

import "time"

// Config is the complete uradori configuration
type Config struct {
	Oracle      OracleConfig      `yaml:"oracle" mapstructure:"oracle"`
	Transit     TransitConfig     `yaml:"transit" mapstructure:"transit"`
	Evaluate    EvaluateConfig    `yaml:"evaluate" mapstructure:"evaluate"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Links       LinksConfig       `yaml:"links" mapstructure:"links"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// OracleConfig configures the judgment oracle client
type OracleConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "gemini" or "openai"
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"-"` // from environment only, never persisted
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // seconds

	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// Truncation retry: initial output budget, doubled per retry up to
	// the ceiling, at most MaxAttempts calls.
	InitialOutputTokens int `yaml:"initial_output_tokens" mapstructure:"initial_output_tokens"`
	MaxOutputTokens     int `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	MaxAttempts         int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// Request pacing against the provider
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// TransitConfig configures the authoritative route source (route mode)
type TransitConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"-" mapstructure:"-"`
	Timeout int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// EvaluateConfig configures the text evaluation pipeline
type EvaluateConfig struct {
	Threshold   float64 `yaml:"threshold" mapstructure:"threshold"`
	ScoreBudget int     `yaml:"score_budget" mapstructure:"score_budget"` // output tokens for the scoring pass
	FixBudget   int     `yaml:"fix_budget" mapstructure:"fix_budget"`     // output tokens for the fix pass
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	VerifyWorkers int `yaml:"verify_workers" mapstructure:"verify_workers"`
}

// CacheConfig configures the verdict cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LinksConfig configures evidence link checking
type LinksConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Workers   int    `yaml:"workers" mapstructure:"workers"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the HTTP glue layer
type ServerConfig struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	PromptsDir   string `yaml:"prompts_dir" mapstructure:"prompts_dir"`
	HistoryLimit int    `yaml:"history_limit" mapstructure:"history_limit"`
}

// OutputConfig controls report output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:            "gemini",
			Model:               "gemini-2.5-flash",
			Timeout:             60,
			Temperature:         0.3,
			InitialOutputTokens: 800,
			MaxOutputTokens:     4096,
			MaxAttempts:         3,
			RequestsPerSecond:   2,
			Burst:               4,
		},
		Transit: TransitConfig{
			BaseURL: "https://api.navitime.co.jp/route/v1/bus",
			Timeout: 15,
		},
		Evaluate: EvaluateConfig{
			Threshold:   8,
			ScoreBudget: 800,
			FixBudget:   2048,
		},
		Concurrency: ConcurrencyConfig{
			VerifyWorkers: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Links: LinksConfig{
			Enabled:   false,
			Workers:   10,
			Timeout:   10,
			UserAgent: "Uradori/0.1 (+https://github.com/uradori/uradori)",
		},
		Server: ServerConfig{
			Addr:         ":3000",
			PromptsDir:   "prompts",
			HistoryLimit: 10,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
