// Package types contains the shared domain types for dossier.
// It has no internal dependencies so every other package can import it.
package types

import (
	"fmt"
	"time"
)

// =============================================================================
// SUBJECTS
// =============================================================================

// Subject is one entity under analysis. A request carries exactly one primary
// subject and zero or more comparison subjects. Subjects are immutable once a
// run starts.
type Subject struct {
	Name   string `json:"name" yaml:"name"`
	Domain string `json:"domain" yaml:"domain"`

	// Optional per-provider identifiers. Empty means the adapter derives what
	// it can from Name/Domain.
	LinkedInSlug     string `json:"linkedin_slug,omitempty" yaml:"linkedin_slug,omitempty"`
	YouTubeChannelID string `json:"youtube_channel_id,omitempty" yaml:"youtube_channel_id,omitempty"`
	AdsPageID        string `json:"ads_page_id,omitempty" yaml:"ads_page_id,omitempty"`
}

// Key returns a stable identifier for logging and map keys.
func (s Subject) Key() string {
	if s.Domain != "" {
		return s.Domain
	}
	return s.Name
}

// =============================================================================
// PROVIDER ERROR TAXONOMY
// =============================================================================

// ErrorKind classifies a provider failure so callers can degrade instead of
// aborting. feature_unavailable covers subscription/paywall responses and is
// never fatal to gathering.
type ErrorKind string

const (
	ErrorTransient          ErrorKind = "transient"
	ErrorFeatureUnavailable ErrorKind = "feature_unavailable"
	ErrorPermanent          ErrorKind = "permanent"
)

// ProviderError is a failure from one adapter, carried as data through the
// gathering layer. It never crosses the adapter boundary as a panic.
type ProviderError struct {
	Provider string    `json:"provider"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// IsFeatureUnavailable reports whether the error is a paywalled-feature
// response that should degrade to empty data.
func (e *ProviderError) IsFeatureUnavailable() bool {
	return e != nil && e.Kind == ErrorFeatureUnavailable
}

// =============================================================================
// GATHERED INTELLIGENCE
// =============================================================================

// RawPayload is a provider payload kept as raw JSON. Downstream generation
// projects it directly into prompts, so no intermediate decoding is needed.
type RawPayload []byte

// MarshalJSON passes the raw bytes through unchanged.
func (p RawPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON stores the raw bytes unchanged.
func (p *RawPayload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

// StreamResult bundles the payloads of one logical stream (social, organic,
// paid, crawl) for one subject. Partial by design: a provider that produced
// nothing simply has no entry in Payloads.
type StreamResult struct {
	Stream   string                `json:"stream"`
	Payloads map[string]RawPayload `json:"payloads"`
	Errors   []ProviderError       `json:"errors,omitempty"`
}

// SubjectIntelligence is everything gathered for one subject: one
// StreamResult per stream plus the accumulated error list.
type SubjectIntelligence struct {
	Subject Subject                 `json:"subject"`
	Streams map[string]StreamResult `json:"streams"`
	Errors  []ProviderError         `json:"errors,omitempty"`
}

// IntelligencePackage is the fan-in result of one gathering run. It always
// exists, even when every provider failed: errors are data, not exceptions.
type IntelligencePackage struct {
	Primary     SubjectIntelligence   `json:"primary"`
	Comparisons []SubjectIntelligence `json:"comparisons"`
	GatheredAt  time.Time             `json:"gathered_at"`
}

// AllErrors flattens every subject's error list, primary first.
func (p *IntelligencePackage) AllErrors() []ProviderError {
	out := append([]ProviderError{}, p.Primary.Errors...)
	for _, c := range p.Comparisons {
		out = append(out, c.Errors...)
	}
	return out
}

// =============================================================================
// GENERATED DOCUMENT
// =============================================================================

// Section is one named fragment of the finished report.
type Section struct {
	Name      string `json:"name"`
	Markdown  string `json:"markdown"`
	WordCount int    `json:"word_count"`
}

// DocumentMetadata records provenance for a generated document.
type DocumentMetadata struct {
	Model       string          `json:"model"`
	Version     string          `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	Errors      []ProviderError `json:"upstream_errors,omitempty"`
}

// GeneratedDocument is the final typed aggregate produced once, at the end of
// a successful pipeline run. Immutable thereafter.
type GeneratedDocument struct {
	Title    string           `json:"title"`
	Summary  string           `json:"summary"`
	Sections []Section        `json:"sections"`
	FullText string           `json:"full_text"`
	Metadata DocumentMetadata `json:"metadata"`
}

// =============================================================================
// JOBS
// =============================================================================

// JobStatus is the lifecycle state of an asynchronous run.
type JobStatus string

const (
	JobAccepted   JobStatus = "accepted"
	JobProcessing JobStatus = "processing"
	JobComplete   JobStatus = "complete"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobFailed
}

// Job tracks one asynchronous report run. Records are replaced whole on every
// mutation so concurrent readers always observe a consistent snapshot.
type Job struct {
	ID        string             `json:"job_id"`
	Status    JobStatus          `json:"status"`
	Progress  string             `json:"progress,omitempty"`
	Output    *GeneratedDocument `json:"output,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
