package types

import (
	"context"
)

// LLMClient defines the interface for generation-provider interactions.
// Implementations buffer any streaming into one final text.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Provider defines one external data source behind the gathering layer.
// Fetch applies its own timeout and returns either a raw JSON payload or a
// *ProviderError; it never panics past this boundary.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, subject Subject) (RawPayload, error)
}

// CrawlProvider is the long-running site-crawl source. Submit is cheap and
// non-blocking; the orchestrator polls Status and fetches Result last so the
// crawl overlaps the rest of the gathering work.
type CrawlProvider interface {
	Name() string
	Submit(ctx context.Context, subject Subject) (crawlID string, err error)
	Status(ctx context.Context, crawlID string) (done bool, err error)
	Result(ctx context.Context, crawlID string) (RawPayload, error)
}
