package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"dossier/internal/types"
)

// AdsProvider fetches ad-library listings (currently running creatives) for
// the paid stream. Ad-library access is plan-gated on most aggregators, so
// feature_unavailable responses are routine here.
type AdsProvider struct {
	httpAdapter
}

// NewAdsProvider creates an ad-library adapter.
func NewAdsProvider(baseURL, apiKey string, timeout time.Duration) *AdsProvider {
	return &AdsProvider{newHTTPAdapter("ads", baseURL, apiKey, timeout)}
}

// Name returns the provider name.
func (p *AdsProvider) Name() string { return "ads" }

// Fetch retrieves the subject's currently running ads.
func (p *AdsProvider) Fetch(ctx context.Context, subject types.Subject) (types.RawPayload, error) {
	q := url.Values{}
	if subject.AdsPageID != "" {
		q.Set("pageId", subject.AdsPageID)
	} else if subject.Name != "" {
		q.Set("companyName", subject.Name)
	} else {
		return nil, p.fail(types.ErrorPermanent, "no page id or company name for subject %q", subject.Key())
	}

	header := http.Header{}
	header.Set("x-api-key", p.apiKey)
	return p.getJSON(ctx, "/company", q, header)
}
