// Package gather implements the intelligence-gathering fan-out/fan-in engine:
// stream gatherers run their adapters concurrently, and the orchestrator runs
// every (subject, stream) pair concurrently, folding all results into one
// IntelligencePackage. Provider failures are recorded as data; nothing in
// this package fails a gathering run as a whole.
package gather

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"dossier/internal/logging"
	"dossier/internal/types"
)

// Stream names are fixed per report type.
const (
	StreamSocial  = "social"
	StreamOrganic = "organic"
	StreamPaid    = "paid"
	StreamCrawl   = "crawl"
)

// StreamGatherer groups the adapters of one logical stream and executes them
// concurrently for a subject.
type StreamGatherer struct {
	name      string
	providers []types.Provider
}

// NewStreamGatherer creates a gatherer over the enabled adapters of a stream.
func NewStreamGatherer(name string, providers ...types.Provider) *StreamGatherer {
	return &StreamGatherer{name: name, providers: providers}
}

// Name returns the stream name.
func (g *StreamGatherer) Name() string { return g.name }

// Gather invokes every adapter concurrently and collects a StreamResult.
// It never fails the stream as a whole: one slow or broken provider must not
// blank out data that succeeded from the others. Per-adapter failures are
// appended to the result's error list; a paywalled feature additionally
// records an empty payload so downstream consumers see "no data" rather than
// a hole.
func (g *StreamGatherer) Gather(ctx context.Context, subject types.Subject) types.StreamResult {
	result := types.StreamResult{
		Stream:   g.name,
		Payloads: make(map[string]types.RawPayload),
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for _, p := range g.providers {
		p := p
		eg.Go(func() error {
			payload, err := p.Fetch(egCtx, subject)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				pe := asProviderError(p.Name(), err)
				result.Errors = append(result.Errors, *pe)
				if pe.IsFeatureUnavailable() {
					result.Payloads[p.Name()] = types.RawPayload(`[]`)
				}
				logging.GatherDebug("stream %s: provider %s failed for %s: %v", g.name, p.Name(), subject.Key(), pe)
				return nil
			}
			result.Payloads[p.Name()] = payload
			return nil
		})
	}

	// Workers never return errors; Wait is a pure join.
	_ = eg.Wait()

	logging.Gather("stream %s for %s: %d payloads, %d errors", g.name, subject.Key(), len(result.Payloads), len(result.Errors))
	return result
}

// asProviderError normalizes any adapter error into the taxonomy. Adapters
// return *types.ProviderError already; anything else is a programming fault
// surfaced as permanent.
func asProviderError(provider string, err error) *types.ProviderError {
	var pe *types.ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &types.ProviderError{
		Provider: provider,
		Kind:     types.ErrorPermanent,
		Message:  err.Error(),
	}
}
