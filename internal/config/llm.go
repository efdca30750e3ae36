package config

import "time"

// LLMConfig configures the generation provider.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`
}

// DefaultLLMConfig returns sensible defaults.
// Large-context report generation needs an extended timeout.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:           "gemini-2.5-pro",
		Timeout:         "5m",
		MaxOutputTokens: 32768,
		Temperature:     0.4,
	}
}

// TimeoutDuration returns the parsed timeout.
func (c LLMConfig) TimeoutDuration() time.Duration {
	return durationOr(c.Timeout, 5*time.Minute)
}
