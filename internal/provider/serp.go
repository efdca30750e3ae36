package provider

import (
	"context"
	"net/url"
	"time"

	"dossier/internal/types"
)

// SerpProvider fetches organic search rankings for the subject's domain.
type SerpProvider struct {
	httpAdapter
}

// NewSerpProvider creates a SERP adapter.
func NewSerpProvider(baseURL, apiKey string, timeout time.Duration) *SerpProvider {
	return &SerpProvider{newHTTPAdapter("serp", baseURL, apiKey, timeout)}
}

// Name returns the provider name.
func (p *SerpProvider) Name() string { return "serp" }

// Fetch retrieves organic results scoped to the subject's domain.
func (p *SerpProvider) Fetch(ctx context.Context, subject types.Subject) (types.RawPayload, error) {
	if subject.Domain == "" {
		return nil, p.fail(types.ErrorPermanent, "no domain for subject %q", subject.Key())
	}

	q := url.Values{}
	q.Set("api_key", p.apiKey)
	q.Set("engine", "google")
	q.Set("q", "site:"+subject.Domain)
	q.Set("num", "20")
	return p.getJSON(ctx, "", q, nil)
}
