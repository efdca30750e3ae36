// Package provider implements the data-source adapters behind the gathering
// layer. Each adapter wraps one external API, applies its own timeout, and
// maps every failure to the transient / feature_unavailable / permanent
// taxonomy so the gatherer can degrade instead of aborting.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dossier/internal/logging"
	"dossier/internal/types"
)

// httpAdapter holds the shared plumbing of an HTTP-backed adapter.
type httpAdapter struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

func newHTTPAdapter(name, baseURL, apiKey string, timeout time.Duration) httpAdapter {
	return httpAdapter{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// classifyStatus maps an HTTP status code to an ErrorKind.
// 402/403 are subscription/paywall responses: the feature is unavailable on
// the current plan, which callers treat as "no data", not as a failure of the
// gathering run.
func classifyStatus(status int) types.ErrorKind {
	switch {
	case status == http.StatusPaymentRequired || status == http.StatusForbidden:
		return types.ErrorFeatureUnavailable
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return types.ErrorTransient
	default:
		return types.ErrorPermanent
	}
}

func (a *httpAdapter) fail(kind types.ErrorKind, format string, args ...interface{}) *types.ProviderError {
	return &types.ProviderError{
		Provider: a.name,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	}
}

// getJSON performs a GET against path with the given query and returns the
// raw response body. All errors come back as *types.ProviderError.
func (a *httpAdapter) getJSON(ctx context.Context, path string, query url.Values, header http.Header) (types.RawPayload, error) {
	return a.doJSON(ctx, http.MethodGet, path, query, header, nil)
}

// postJSON performs a POST with a JSON body.
func (a *httpAdapter) postJSON(ctx context.Context, path string, body []byte, header http.Header) (types.RawPayload, error) {
	return a.doJSON(ctx, http.MethodPost, path, nil, header, body)
}

func (a *httpAdapter) doJSON(ctx context.Context, method, path string, query url.Values, header http.Header, body []byte) (types.RawPayload, error) {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, a.fail(types.ErrorPermanent, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		// Timeouts and connection resets are retry-worthy on a later run.
		if errors.Is(err, context.Canceled) {
			return nil, a.fail(types.ErrorPermanent, "request canceled")
		}
		return nil, a.fail(types.ErrorTransient, "request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, a.fail(types.ErrorTransient, "read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := classifyStatus(resp.StatusCode)
		logging.ProvidersWarn("%s: HTTP %d classified as %s", a.name, resp.StatusCode, kind)
		return nil, a.fail(kind, "HTTP %d: %s", resp.StatusCode, snippet(data))
	}

	logging.Providers("%s: %s %s -> %d bytes", a.name, method, path, len(data))
	return types.RawPayload(data), nil
}

// snippet bounds error bodies so upstream error lists stay readable.
func snippet(data []byte) string {
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// slugify derives a URL slug from a company name when no explicit identifier
// was supplied.
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	return url.PathEscape(s)
}
