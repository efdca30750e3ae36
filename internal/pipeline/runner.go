package pipeline

import (
	"context"
	"fmt"

	"dossier/internal/generate"
	"dossier/internal/logging"
	"dossier/internal/types"
)

// Gatherer is the fan-out engine the runner invokes exactly once per run.
// Per its contract it never fails: errors arrive as data in the package.
type Gatherer interface {
	Gather(ctx context.Context, primary types.Subject, comparisons []types.Subject) *types.IntelligencePackage
}

// StageRunner is one sequential generation step.
type StageRunner interface {
	Name() string
	Run(ctx context.Context, intel *types.IntelligencePackage, prior []string, continuation string) (*generate.Output, error)
}

// Request describes one pipeline run.
type Request struct {
	Primary       types.Subject
	Comparisons   []types.Subject
	PriorDocument string
}

// Runner drives one run through its fixed state sequence:
// gathering -> stage[1..n] -> assembling -> done, with failed reachable from
// any stage. Stages are strictly sequential: stage k+1 never starts before
// stage k's context entry is committed.
type Runner struct {
	gatherer  Gatherer
	stages    []StageRunner
	assembler *Assembler
	progress  func(label string)
}

// NewRunner creates a runner. progress receives a coarse label at every
// transition and may be nil.
func NewRunner(gatherer Gatherer, stages []StageRunner, assembler *Assembler, progress func(string)) *Runner {
	return &Runner{gatherer: gatherer, stages: stages, assembler: assembler, progress: progress}
}

func (r *Runner) publish(label string) {
	logging.Pipeline("transition: %s", label)
	if r.progress != nil {
		r.progress(label)
	}
}

// Run executes the pipeline. The returned ContextLog is valid in every
// outcome: on failure it holds the entries committed before the failing
// stage, for diagnostic replay. On success the document is the single
// GeneratedDocument of the run; on failure no partial document is returned.
func (r *Runner) Run(ctx context.Context, req Request) (*types.GeneratedDocument, *ContextLog, error) {
	log := NewContextLog()

	r.publish("gathering")
	intel := r.gatherer.Gather(ctx, req.Primary, req.Comparisons)

	outputs := make([]*generate.Output, 0, len(r.stages))
	for _, stage := range r.stages {
		r.publish("generating " + stage.Name())

		out, err := stage.Run(ctx, intel, log.Rendered(), req.PriorDocument)
		if err != nil {
			r.publish("failed")
			logging.PipelineError("run failed at stage %s: %v", stage.Name(), err)
			return nil, log, fmt.Errorf("pipeline failed: %w", err)
		}

		log.Append(stage.Name(), out.Raw)
		outputs = append(outputs, out)
	}

	r.publish("assembling")
	doc, err := r.assembler.Assemble(intel, outputs)
	if err != nil {
		r.publish("failed")
		logging.PipelineError("assembly failed: %v", err)
		return nil, log, fmt.Errorf("pipeline failed: %w", err)
	}

	r.publish("done")
	logging.Pipeline("run completed: %d sections, %d upstream errors", len(doc.Sections), len(doc.Metadata.Errors))
	return doc, log, nil
}
