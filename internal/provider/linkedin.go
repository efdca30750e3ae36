package provider

import (
	"context"
	"net/url"
	"time"

	"dossier/internal/types"
)

// LinkedInProvider fetches company-page statistics (followers, headcount,
// recent posts) for the social stream.
type LinkedInProvider struct {
	httpAdapter
}

// NewLinkedInProvider creates a LinkedIn adapter.
func NewLinkedInProvider(baseURL, apiKey string, timeout time.Duration) *LinkedInProvider {
	return &LinkedInProvider{newHTTPAdapter("linkedin", baseURL, apiKey, timeout)}
}

// Name returns the provider name.
func (p *LinkedInProvider) Name() string { return "linkedin" }

// Fetch retrieves the company page for the subject.
func (p *LinkedInProvider) Fetch(ctx context.Context, subject types.Subject) (types.RawPayload, error) {
	slug := subject.LinkedInSlug
	if slug == "" {
		slug = slugify(subject.Name)
	}
	if slug == "" {
		return nil, p.fail(types.ErrorPermanent, "no company name or slug for subject %q", subject.Key())
	}

	q := url.Values{}
	q.Set("api_key", p.apiKey)
	q.Set("type", "company")
	q.Set("linkId", slug)
	return p.getJSON(ctx, "", q, nil)
}
