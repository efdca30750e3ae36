package config

import "time"

// JobsConfig configures the in-memory job store.
type JobsConfig struct {
	// Jobs older than TTL are swept regardless of status
	TTL string `yaml:"ttl"`

	// How often the sweeper runs
	SweepInterval string `yaml:"sweep_interval"`
}

// DefaultJobsConfig returns sensible defaults.
func DefaultJobsConfig() JobsConfig {
	return JobsConfig{
		TTL:           "2h",
		SweepInterval: "5m",
	}
}

// TTLDuration returns the parsed job TTL.
func (c JobsConfig) TTLDuration() time.Duration {
	return durationOr(c.TTL, 2*time.Hour)
}

// SweepIntervalDuration returns the parsed sweep interval.
func (c JobsConfig) SweepIntervalDuration() time.Duration {
	return durationOr(c.SweepInterval, 5*time.Minute)
}

// DeliveryConfig configures webhook callback delivery.
type DeliveryConfig struct {
	MaxAttempts  int    `yaml:"max_attempts"`
	BaseDelay    string `yaml:"base_delay"`
	Timeout      string `yaml:"timeout"`
	SharedSecret string `yaml:"shared_secret"`
}

// DefaultDeliveryConfig returns sensible defaults.
func DefaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		MaxAttempts: 4,
		BaseDelay:   "2s",
		Timeout:     "15s",
	}
}

// BaseDelayDuration returns the parsed base retry delay.
func (c DeliveryConfig) BaseDelayDuration() time.Duration {
	return durationOr(c.BaseDelay, 2*time.Second)
}

// TimeoutDuration returns the parsed per-attempt HTTP timeout.
func (c DeliveryConfig) TimeoutDuration() time.Duration {
	return durationOr(c.Timeout, 15*time.Second)
}
