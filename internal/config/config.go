// Package config holds all dossier configuration. Values load from a YAML
// file, then environment variables override the sensitive fields. Every
// tunable the pipeline uses (timeouts, retry counts, TTLs, truncation
// budgets) lives here rather than as literals in components.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dossier configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Generation provider
	LLM LLMConfig `yaml:"llm"`

	// Optional YAML file overriding per-stage instructions
	InstructionsPath string `yaml:"instructions_path"`

	// Data providers, one block per adapter
	Providers ProvidersConfig `yaml:"providers"`

	// Gathering orchestration
	Gathering GatheringConfig `yaml:"gathering"`

	// Prompt truncation budgets
	Truncation TruncationConfig `yaml:"truncation"`

	// Async job store
	Jobs JobsConfig `yaml:"jobs"`

	// Webhook delivery
	Delivery DeliveryConfig `yaml:"delivery"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns a fully populated configuration with production defaults.
func Default() *Config {
	return &Config{
		Name:       "dossier",
		Version:    "1.0.0",
		LLM:        DefaultLLMConfig(),
		Providers:  DefaultProvidersConfig(),
		Gathering:  DefaultGatheringConfig(),
		Truncation: DefaultTruncationConfig(),
		Jobs:       DefaultJobsConfig(),
		Delivery:   DefaultDeliveryConfig(),
		Logging:    DefaultLoggingConfig(),
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays environment variables onto the loaded config.
// Only credentials and endpoints are overridable; behavioral tunables stay in
// the file.
func (c *Config) ApplyEnvOverrides() {
	setIfEnv := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfEnv(&c.LLM.APIKey, "DOSSIER_GEMINI_API_KEY")
	setIfEnv(&c.LLM.Model, "DOSSIER_GEMINI_MODEL")
	setIfEnv(&c.Providers.LinkedIn.APIKey, "DOSSIER_LINKEDIN_API_KEY")
	setIfEnv(&c.Providers.YouTube.APIKey, "DOSSIER_YOUTUBE_API_KEY")
	setIfEnv(&c.Providers.Serp.APIKey, "DOSSIER_SERP_API_KEY")
	setIfEnv(&c.Providers.Ads.APIKey, "DOSSIER_ADS_API_KEY")
	setIfEnv(&c.Providers.Crawl.APIKey, "DOSSIER_CRAWL_API_KEY")
	setIfEnv(&c.Delivery.SharedSecret, "DOSSIER_WEBHOOK_SECRET")
}

// Validate checks the invariants a run cannot recover from at runtime.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (or set DOSSIER_GEMINI_API_KEY)")
	}
	if c.Truncation.IntelligenceBudget <= 0 || c.Truncation.ContextBudget <= 0 {
		return fmt.Errorf("truncation budgets must be positive")
	}
	if c.Delivery.MaxAttempts <= 0 {
		return fmt.Errorf("delivery.max_attempts must be positive")
	}
	if _, err := parseDuration(c.Jobs.TTL, 0); err != nil {
		return fmt.Errorf("jobs.ttl: %w", err)
	}
	return nil
}

// parseDuration parses a duration string, substituting fallback when empty.
func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// durationOr is parseDuration for already-validated config paths.
func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := parseDuration(s, fallback)
	if err != nil {
		return fallback
	}
	return d
}
