package config

// TruncationConfig caps the size of each prompt block. Oversized blocks are
// cut and marked, never dropped silently. Budgets are characters, not tokens:
// a coarse bound is enough to keep prompts inside the model's context window.
type TruncationConfig struct {
	// Per-subject projection of gathered intelligence
	IntelligenceBudget int `yaml:"intelligence_budget"`

	// Each prior-stage context entry
	ContextBudget int `yaml:"context_budget"`

	// Continuation text from a prior document version
	ContinuationBudget int `yaml:"continuation_budget"`
}

// DefaultTruncationConfig returns sensible defaults.
func DefaultTruncationConfig() TruncationConfig {
	return TruncationConfig{
		IntelligenceBudget: 24000,
		ContextBudget:      8000,
		ContinuationBudget: 12000,
	}
}
