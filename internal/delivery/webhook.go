// Package delivery pushes terminal job results to caller-supplied webhook
// endpoints. Delivery is at-least-once with bounded retries; a delivery that
// ultimately fails is logged and dropped. The document stays retrievable
// through the job store, so delivery failures never roll anything back.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dossier/internal/logging"
	"dossier/internal/types"
)

// SignatureHeader carries the shared secret the receiver authenticates with.
const SignatureHeader = "X-Dossier-Signature"

// Target describes where one job's callback goes.
type Target struct {
	URL string `json:"url"`

	// Secret overrides the deliverer's shared secret for this target.
	Secret string `json:"secret,omitempty"`

	// Metadata is echoed back verbatim in the callback body.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// payload is the normalized callback body.
type payload struct {
	JobID    string            `json:"job_id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Output   *payloadOutput    `json:"output,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type payloadOutput struct {
	ContentRaw        string                   `json:"content_raw"`
	ContentStructured *types.GeneratedDocument `json:"content_structured"`
}

// Deliverer posts callbacks with bounded retries and a linearly increasing
// delay between attempts.
type Deliverer struct {
	client       *http.Client
	maxAttempts  int
	baseDelay    time.Duration
	sharedSecret string
}

// NewDeliverer creates a deliverer.
func NewDeliverer(maxAttempts int, baseDelay, timeout time.Duration, sharedSecret string) *Deliverer {
	return &Deliverer{
		client:       &http.Client{Timeout: timeout},
		maxAttempts:  maxAttempts,
		baseDelay:    baseDelay,
		sharedSecret: sharedSecret,
	}
}

// Deliver posts the job's terminal state to the target. It returns the last
// attempt's error after exhausting retries; callers log it and move on.
func (d *Deliverer) Deliver(ctx context.Context, job types.Job, target Target) error {
	body, err := json.Marshal(buildPayload(job, target))
	if err != nil {
		return fmt.Errorf("encode callback payload: %w", err)
	}

	secret := target.Secret
	if secret == "" {
		secret = d.sharedSecret
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = d.post(ctx, target.URL, body, secret)
		if lastErr == nil {
			logging.Delivery("job %s delivered to %s on attempt %d", job.ID, target.URL, attempt)
			return nil
		}
		logging.DeliveryWarn("job %s delivery attempt %d/%d failed: %v", job.ID, attempt, d.maxAttempts, lastErr)

		if attempt == d.maxAttempts {
			break
		}
		// Linear backoff: base, 2*base, 3*base, ...
		select {
		case <-ctx.Done():
			return fmt.Errorf("delivery canceled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * d.baseDelay):
		}
	}
	return fmt.Errorf("delivery to %s failed after %d attempts: %w", target.URL, d.maxAttempts, lastErr)
}

func (d *Deliverer) post(ctx context.Context, url string, body []byte, secret string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(SignatureHeader, secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// buildPayload normalizes a terminal job into the callback body. Job status
// "complete" maps to callback status "completed" per the webhook contract.
func buildPayload(job types.Job, target Target) payload {
	p := payload{
		JobID:    job.ID,
		Metadata: target.Metadata,
		Error:    job.Error,
	}
	if job.Status == types.JobComplete {
		p.Status = "completed"
	} else {
		p.Status = "failed"
	}
	if job.Output != nil {
		p.Output = &payloadOutput{
			ContentRaw:        job.Output.FullText,
			ContentStructured: job.Output,
		}
	}
	return p
}
