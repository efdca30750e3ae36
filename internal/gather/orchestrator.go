package gather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"dossier/internal/logging"
	"dossier/internal/types"
)

// Config tunes the orchestrator. Values come from config.GatheringConfig.
type Config struct {
	Timeout           time.Duration
	CrawlPollInterval time.Duration
	CrawlTimeout      time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:           5 * time.Minute,
		CrawlPollInterval: 5 * time.Second,
		CrawlTimeout:      3 * time.Minute,
	}
}

// Orchestrator fans a gathering request out across all streams and all
// subjects, then reduces to a single IntelligencePackage. It never propagates
// a failure to its caller: every error ends up as data inside the package.
type Orchestrator struct {
	streams []*StreamGatherer
	crawl   types.CrawlProvider
	config  Config
}

// NewOrchestrator creates an orchestrator. crawl may be nil when the crawl
// stream is disabled.
func NewOrchestrator(streams []*StreamGatherer, crawl types.CrawlProvider, cfg Config) *Orchestrator {
	return &Orchestrator{streams: streams, crawl: crawl, config: cfg}
}

// Gather executes every (subject, stream) pair concurrently and joins the
// results. The site crawl for the primary subject is submitted before the
// fan-out and polled after it, so the slowest asynchronous provider overlaps
// all other gathering work.
func (o *Orchestrator) Gather(ctx context.Context, primary types.Subject, comparisons []types.Subject) *types.IntelligencePackage {
	start := time.Now()
	timer := logging.StartTimer(logging.CategoryGather, "Gather")
	defer timer.Stop()

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	subjects := append([]types.Subject{primary}, comparisons...)
	logging.Gather("gathering started: %d subjects, %d streams", len(subjects), len(o.streams))

	// Submit the long-running crawl first (primary subject only).
	var crawlID string
	var crawlSubmitErr error
	if o.crawl != nil {
		crawlID, crawlSubmitErr = o.crawl.Submit(ctx, primary)
		if crawlSubmitErr != nil {
			logging.GatherDebug("crawl submit failed: %v", crawlSubmitErr)
		}
	}

	// One task per (subject, stream). Results land in per-subject maps; a
	// panicking task marks its whole subject as failed instead of crashing
	// the run.
	results := make([]map[string]types.StreamResult, len(subjects))
	for i := range results {
		results[i] = make(map[string]types.StreamResult)
	}
	panicked := make([]string, len(subjects))

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for i, subject := range subjects {
		for _, stream := range o.streams {
			i, subject, stream := i, subject, stream
			eg.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						panicked[i] = fmt.Sprintf("gathering panicked: %v", r)
						mu.Unlock()
					}
				}()

				sr := stream.Gather(egCtx, subject)

				mu.Lock()
				results[i][stream.Name()] = sr
				mu.Unlock()
				return nil
			})
		}
	}
	_ = eg.Wait()

	// Poll-and-fetch the crawl last.
	if o.crawl != nil {
		sr := o.awaitCrawl(ctx, crawlID, crawlSubmitErr)
		mu.Lock()
		results[0][StreamCrawl] = sr
		mu.Unlock()
	}

	pkg := &types.IntelligencePackage{
		Primary:    buildSubjectIntelligence(subjects[0], results[0], panicked[0]),
		GatheredAt: start,
	}
	for i := 1; i < len(subjects); i++ {
		pkg.Comparisons = append(pkg.Comparisons, buildSubjectIntelligence(subjects[i], results[i], panicked[i]))
	}

	logging.Gather("gathering completed in %v: %d total errors", time.Since(start), len(pkg.AllErrors()))
	return pkg
}

// awaitCrawl polls the submitted crawl at a fixed interval under a hard
// timeout. A timed-out or failed crawl becomes a failed stream, never a
// fatal error for the package.
func (o *Orchestrator) awaitCrawl(ctx context.Context, crawlID string, submitErr error) types.StreamResult {
	sr := types.StreamResult{
		Stream:   StreamCrawl,
		Payloads: make(map[string]types.RawPayload),
	}
	name := o.crawl.Name()

	if submitErr != nil {
		sr.Errors = append(sr.Errors, *asProviderError(name, submitErr))
		return sr
	}

	deadline := time.Now().Add(o.config.CrawlTimeout)
	ticker := time.NewTicker(o.config.CrawlPollInterval)
	defer ticker.Stop()

	for {
		done, err := o.crawl.Status(ctx, crawlID)
		if err != nil {
			pe := asProviderError(name, err)
			// Transient poll errors keep polling until the deadline.
			if pe.Kind != types.ErrorTransient {
				sr.Errors = append(sr.Errors, *pe)
				return sr
			}
		}
		if done {
			payload, err := o.crawl.Result(ctx, crawlID)
			if err != nil {
				sr.Errors = append(sr.Errors, *asProviderError(name, err))
				return sr
			}
			sr.Payloads[name] = payload
			return sr
		}

		if time.Now().After(deadline) {
			sr.Errors = append(sr.Errors, types.ProviderError{
				Provider: name,
				Kind:     types.ErrorTransient,
				Message:  fmt.Sprintf("crawl %s did not finish within %v", crawlID, o.config.CrawlTimeout),
			})
			logging.GatherDebug("crawl %s timed out", crawlID)
			return sr
		}

		select {
		case <-ctx.Done():
			sr.Errors = append(sr.Errors, types.ProviderError{
				Provider: name,
				Kind:     types.ErrorTransient,
				Message:  "gathering canceled while waiting for crawl",
			})
			return sr
		case <-ticker.C:
		}
	}
}

// buildSubjectIntelligence merges a subject's stream results. A panicked
// gathering unit yields empty streams and a single complete-failure entry.
func buildSubjectIntelligence(subject types.Subject, streams map[string]types.StreamResult, panicMsg string) types.SubjectIntelligence {
	si := types.SubjectIntelligence{
		Subject: subject,
		Streams: make(map[string]types.StreamResult),
	}

	if panicMsg != "" {
		si.Errors = []types.ProviderError{{
			Provider: "gather",
			Kind:     types.ErrorPermanent,
			Message:  fmt.Sprintf("complete failure for subject %q: %s", subject.Key(), panicMsg),
		}}
		return si
	}

	for name, sr := range streams {
		si.Streams[name] = sr
		si.Errors = append(si.Errors, sr.Errors...)
	}
	return si
}
