package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dossier/internal/types"
)

// CrawlProvider submits a site crawl and exposes its asynchronous lifecycle.
// The orchestrator submits first, runs all other streams, then polls Status
// and fetches Result last, so the crawl's latency overlaps the rest of the
// gathering work.
type CrawlProvider struct {
	httpAdapter
}

// NewCrawlProvider creates a site-crawl adapter.
func NewCrawlProvider(baseURL, apiKey string, timeout time.Duration) *CrawlProvider {
	return &CrawlProvider{newHTTPAdapter("crawl", baseURL, apiKey, timeout)}
}

// Name returns the provider name.
func (p *CrawlProvider) Name() string { return "crawl" }

func (p *CrawlProvider) authHeader() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+p.apiKey)
	return h
}

type crawlSubmitResponse struct {
	ID string `json:"id"`
}

type crawlStatusResponse struct {
	Status string `json:"status"`
}

// Submit starts a crawl of the subject's site and returns the crawl id.
func (p *CrawlProvider) Submit(ctx context.Context, subject types.Subject) (string, error) {
	if subject.Domain == "" {
		return "", p.fail(types.ErrorPermanent, "no domain for subject %q", subject.Key())
	}

	body, err := json.Marshal(map[string]interface{}{
		"url":   fmt.Sprintf("https://%s", subject.Domain),
		"limit": 25,
		"scrapeOptions": map[string]interface{}{
			"formats":  []string{"markdown"},
			"onlyMainContent": true,
		},
	})
	if err != nil {
		return "", p.fail(types.ErrorPermanent, "encode request: %v", err)
	}

	data, err := p.postJSON(ctx, "/crawl", body, p.authHeader())
	if err != nil {
		return "", err
	}

	var resp crawlSubmitResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.ID == "" {
		return "", p.fail(types.ErrorPermanent, "unexpected submit response: %s", snippet(data))
	}
	return resp.ID, nil
}

// Status reports whether the crawl has reached a terminal state. A failed
// crawl surfaces as a permanent error; "still working" is done=false, nil.
func (p *CrawlProvider) Status(ctx context.Context, crawlID string) (bool, error) {
	data, err := p.getJSON(ctx, "/crawl/"+crawlID, nil, p.authHeader())
	if err != nil {
		return false, err
	}

	var resp crawlStatusResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, p.fail(types.ErrorPermanent, "unexpected status response: %s", snippet(data))
	}

	switch resp.Status {
	case "completed":
		return true, nil
	case "failed", "cancelled":
		return false, p.fail(types.ErrorPermanent, "crawl %s ended with status %q", crawlID, resp.Status)
	default:
		return false, nil
	}
}

// Result fetches the crawl output. Only valid after Status reported done.
func (p *CrawlProvider) Result(ctx context.Context, crawlID string) (types.RawPayload, error) {
	return p.getJSON(ctx, "/crawl/"+crawlID, nil, p.authHeader())
}
