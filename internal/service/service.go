// Package service is the submission boundary of dossier: it accepts
// validated report requests, runs the pipeline out-of-band, tracks jobs, and
// triggers webhook delivery. An HTTP front-end maps its routes directly onto
// Submit and Poll.
package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"dossier/internal/config"
	"dossier/internal/delivery"
	"dossier/internal/gather"
	"dossier/internal/generate"
	"dossier/internal/jobs"
	"dossier/internal/logging"
	"dossier/internal/pipeline"
	"dossier/internal/provider"
	"dossier/internal/types"
)

// Request is one report submission.
type Request struct {
	Primary       types.Subject   `json:"primary"`
	Comparisons   []types.Subject `json:"comparisons,omitempty"`
	PriorDocument string          `json:"prior_document,omitempty"`

	// Callback, when set, receives the terminal job state by webhook.
	Callback *delivery.Target `json:"callback,omitempty"`
}

// Accepted is the immediate response to a successful submission.
type Accepted struct {
	JobID  string          `json:"job_id"`
	Status types.JobStatus `json:"status"`
}

// Service wires the gathering, generation, job, and delivery layers.
type Service struct {
	cfg       *config.Config
	store     *jobs.Store
	gatherer  pipeline.Gatherer
	stages    []pipeline.StageRunner
	assembler *pipeline.Assembler
	deliverer *delivery.Deliverer

	wg sync.WaitGroup
}

// New builds a fully wired service from configuration: real provider
// adapters, the Gemini client, the fixed stage sequence, job store, and
// webhook deliverer.
func New(cfg *config.Config) (*Service, error) {
	client, err := generate.NewGeminiClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	instructions, err := generate.LoadInstructions(cfg.InstructionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load instructions: %w", err)
	}
	if err := instructions.Watch(); err != nil {
		logging.Boot("instructions watch disabled: %v", err)
	}

	streams := buildStreams(cfg.Providers)

	var crawl types.CrawlProvider
	if c := cfg.Providers.Crawl; c.Enabled {
		crawl = provider.NewCrawlProvider(c.BaseURL, c.APIKey, c.TimeoutDuration())
	}

	orchestrator := gather.NewOrchestrator(streams, crawl, gather.Config{
		Timeout:           cfg.Gathering.TimeoutDuration(),
		CrawlPollInterval: cfg.Gathering.CrawlPollIntervalDuration(),
		CrawlTimeout:      cfg.Gathering.CrawlTimeoutDuration(),
	})

	stages := []pipeline.StageRunner{
		generate.NewStage(generate.Spec{Name: generate.StagePositioning, Kind: generate.KindStructured}, client, instructions, cfg.Truncation),
		generate.NewStage(generate.Spec{Name: generate.StageLandscape, Kind: generate.KindSections}, client, instructions, cfg.Truncation),
		generate.NewStage(generate.Spec{Name: generate.StageChannels, Kind: generate.KindSections}, client, instructions, cfg.Truncation),
		generate.NewStage(generate.Spec{Name: generate.StageExecutive, Kind: generate.KindStructured}, client, instructions, cfg.Truncation),
	}

	return NewWithComponents(
		cfg,
		jobs.NewStore(cfg.Jobs.TTLDuration(), cfg.Jobs.SweepIntervalDuration()),
		orchestrator,
		stages,
		pipeline.NewAssembler(client.Model(), cfg.Version),
		delivery.NewDeliverer(cfg.Delivery.MaxAttempts, cfg.Delivery.BaseDelayDuration(), cfg.Delivery.TimeoutDuration(), cfg.Delivery.SharedSecret),
	), nil
}

// NewWithComponents wires a service from pre-built parts. The service takes
// ownership of the store.
func NewWithComponents(cfg *config.Config, store *jobs.Store, gatherer pipeline.Gatherer, stages []pipeline.StageRunner, assembler *pipeline.Assembler, deliverer *delivery.Deliverer) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		gatherer:  gatherer,
		stages:    stages,
		assembler: assembler,
		deliverer: deliverer,
	}
}

// buildStreams groups the enabled adapters into their fixed streams.
func buildStreams(p config.ProvidersConfig) []*gather.StreamGatherer {
	var social []types.Provider
	if p.LinkedIn.Enabled {
		social = append(social, provider.NewLinkedInProvider(p.LinkedIn.BaseURL, p.LinkedIn.APIKey, p.LinkedIn.TimeoutDuration()))
	}
	if p.YouTube.Enabled {
		social = append(social, provider.NewYouTubeProvider(p.YouTube.BaseURL, p.YouTube.APIKey, p.YouTube.TimeoutDuration()))
	}

	var organic []types.Provider
	if p.Serp.Enabled {
		organic = append(organic, provider.NewSerpProvider(p.Serp.BaseURL, p.Serp.APIKey, p.Serp.TimeoutDuration()))
	}

	var paid []types.Provider
	if p.Ads.Enabled {
		paid = append(paid, provider.NewAdsProvider(p.Ads.BaseURL, p.Ads.APIKey, p.Ads.TimeoutDuration()))
	}

	var streams []*gather.StreamGatherer
	if len(social) > 0 {
		streams = append(streams, gather.NewStreamGatherer(gather.StreamSocial, social...))
	}
	if len(organic) > 0 {
		streams = append(streams, gather.NewStreamGatherer(gather.StreamOrganic, organic...))
	}
	if len(paid) > 0 {
		streams = append(streams, gather.NewStreamGatherer(gather.StreamPaid, paid...))
	}
	return streams
}

// Submit validates the request, registers a job, and starts the pipeline
// out-of-band. It returns immediately with the accepted job id.
func (s *Service) Submit(ctx context.Context, req Request) (Accepted, error) {
	if err := validate(req); err != nil {
		return Accepted{}, err
	}

	job := s.store.Create()
	logging.Jobs("job %s accepted for %q (+%d comparisons)", job.ID, req.Primary.Key(), len(req.Comparisons))

	s.wg.Add(1)
	go s.run(job.ID, req)

	return Accepted{JobID: job.ID, Status: job.Status}, nil
}

// Poll returns a snapshot of the job. Expired and never-existed ids are both
// reported as not found.
func (s *Service) Poll(id string) (types.Job, bool) {
	return s.store.Get(id)
}

// Close waits for in-flight runs and stops the job store's sweeper.
func (s *Service) Close() {
	s.wg.Wait()
	s.store.Stop()
}

func validate(req Request) error {
	if req.Primary.Name == "" && req.Primary.Domain == "" {
		return fmt.Errorf("primary subject requires a name or domain")
	}
	for _, c := range req.Comparisons {
		if c.Name == "" && c.Domain == "" {
			return fmt.Errorf("comparison subject requires a name or domain")
		}
	}
	if req.Callback != nil {
		u, err := url.ParseRequestURI(req.Callback.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("callback URL %q is not a valid http(s) URL", req.Callback.URL)
		}
	}
	return nil
}

// run executes one pipeline out-of-band. The submitting request's context is
// deliberately not inherited: the job outlives the submission call.
func (s *Service) run(jobID string, req Request) {
	defer s.wg.Done()
	ctx := context.Background()

	runner := pipeline.NewRunner(s.gatherer, s.stages, s.assembler, func(label string) {
		switch label {
		case "done", "failed":
			// Terminal transitions are applied below with their payloads.
		default:
			s.store.UpdateStatus(jobID, types.JobProcessing, label)
		}
	})

	doc, _, err := runner.Run(ctx, pipeline.Request{
		Primary:       req.Primary,
		Comparisons:   req.Comparisons,
		PriorDocument: req.PriorDocument,
	})
	if err != nil {
		s.store.SetError(jobID, err.Error())
	} else {
		s.store.SetOutput(jobID, doc)
	}

	if req.Callback == nil {
		return
	}
	job, found := s.store.Get(jobID)
	if !found {
		// Swept mid-run; nothing sensible to deliver.
		return
	}
	if err := s.deliverer.Deliver(ctx, job, *req.Callback); err != nil {
		// Delivery failures never affect job state; polling still works.
		logging.DeliveryWarn("job %s: %v", jobID, err)
	}
}
