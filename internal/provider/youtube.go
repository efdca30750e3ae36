package provider

import (
	"context"
	"net/url"
	"time"

	"dossier/internal/types"
)

// YouTubeProvider fetches channel statistics and recent uploads for the
// social stream.
type YouTubeProvider struct {
	httpAdapter
}

// NewYouTubeProvider creates a YouTube adapter.
func NewYouTubeProvider(baseURL, apiKey string, timeout time.Duration) *YouTubeProvider {
	return &YouTubeProvider{newHTTPAdapter("youtube", baseURL, apiKey, timeout)}
}

// Name returns the provider name.
func (p *YouTubeProvider) Name() string { return "youtube" }

// Fetch retrieves channel data. Without a channel ID it falls back to a
// channel search on the company name.
func (p *YouTubeProvider) Fetch(ctx context.Context, subject types.Subject) (types.RawPayload, error) {
	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("part", "snippet,statistics")

	if subject.YouTubeChannelID != "" {
		q.Set("id", subject.YouTubeChannelID)
		return p.getJSON(ctx, "/channels", q, nil)
	}

	if subject.Name == "" {
		return nil, p.fail(types.ErrorPermanent, "no channel id or company name for subject %q", subject.Key())
	}
	q.Set("part", "snippet")
	q.Set("type", "channel")
	q.Set("q", subject.Name)
	return p.getJSON(ctx, "/search", q, nil)
}
