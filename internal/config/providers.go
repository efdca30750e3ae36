package config

import "time"

// ProviderConfig configures one data-source adapter.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration returns the parsed per-request timeout.
func (c ProviderConfig) TimeoutDuration() time.Duration {
	return durationOr(c.Timeout, 30*time.Second)
}

// ProvidersConfig holds one block per adapter.
type ProvidersConfig struct {
	LinkedIn ProviderConfig `yaml:"linkedin"`
	YouTube  ProviderConfig `yaml:"youtube"`
	Serp     ProviderConfig `yaml:"serp"`
	Ads      ProviderConfig `yaml:"ads"`
	Crawl    ProviderConfig `yaml:"crawl"`
}

// DefaultProvidersConfig enables every adapter against its public endpoint.
func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		LinkedIn: ProviderConfig{Enabled: true, BaseURL: "https://api.scrapingdog.com/linkedin", Timeout: "30s"},
		YouTube:  ProviderConfig{Enabled: true, BaseURL: "https://www.googleapis.com/youtube/v3", Timeout: "30s"},
		Serp:     ProviderConfig{Enabled: true, BaseURL: "https://serpapi.com/search", Timeout: "30s"},
		Ads:      ProviderConfig{Enabled: true, BaseURL: "https://api.scrapecreators.com/v1/ads", Timeout: "30s"},
		Crawl:    ProviderConfig{Enabled: true, BaseURL: "https://api.firecrawl.dev/v1", Timeout: "30s"},
	}
}

// GatheringConfig configures the orchestrator's fan-out and crawl polling.
type GatheringConfig struct {
	// Overall wall-clock bound for one gathering run
	Timeout string `yaml:"timeout"`

	// Long-running crawl polling
	CrawlPollInterval string `yaml:"crawl_poll_interval"`
	CrawlTimeout      string `yaml:"crawl_timeout"`
}

// DefaultGatheringConfig returns sensible defaults.
func DefaultGatheringConfig() GatheringConfig {
	return GatheringConfig{
		Timeout:           "5m",
		CrawlPollInterval: "5s",
		CrawlTimeout:      "3m",
	}
}

// TimeoutDuration returns the parsed overall gathering timeout.
func (c GatheringConfig) TimeoutDuration() time.Duration {
	return durationOr(c.Timeout, 5*time.Minute)
}

// CrawlPollIntervalDuration returns the parsed crawl poll interval.
func (c GatheringConfig) CrawlPollIntervalDuration() time.Duration {
	return durationOr(c.CrawlPollInterval, 5*time.Second)
}

// CrawlTimeoutDuration returns the parsed crawl hard timeout.
func (c GatheringConfig) CrawlTimeoutDuration() time.Duration {
	return durationOr(c.CrawlTimeout, 3*time.Minute)
}
