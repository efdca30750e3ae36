package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dossier/internal/config"
	"dossier/internal/logging"
	"dossier/internal/types"
)

// Stage names, in their fixed pipeline order.
const (
	StagePositioning = "positioning"
	StageLandscape   = "landscape"
	StageChannels    = "channels"
	StageExecutive   = "executive"
)

// OutputKind selects how a stage's reply is parsed.
type OutputKind int

const (
	// KindStructured parses a strict JSON object into StructuredOutput.
	KindStructured OutputKind = iota
	// KindSections splits free text on embedded section markers.
	KindSections
)

// Spec declares one stage: its name, parse mode, and which streams of the
// intelligence package its prompt projects. Empty Streams means all.
type Spec struct {
	Name    string
	Kind    OutputKind
	Streams []string
}

// Output is the result of one stage run. Exactly one of Structured/Sections
// is populated, per the spec's Kind. Raw always carries the model text and
// becomes the stage's pipeline-context entry.
type Output struct {
	StageName  string
	Raw        string
	Structured *StructuredOutput
	Sections   []types.Section
}

// Stage performs one generation call: build a bounded prompt, invoke the
// client exactly once, parse the reply. A stage failure never corrupts the
// caller's accumulated context.
type Stage struct {
	spec         Spec
	client       types.LLMClient
	instructions *Instructions
	budgets      config.TruncationConfig
}

// NewStage creates a stage.
func NewStage(spec Spec, client types.LLMClient, instructions *Instructions, budgets config.TruncationConfig) *Stage {
	return &Stage{spec: spec, client: client, instructions: instructions, budgets: budgets}
}

// Name returns the stage name.
func (s *Stage) Name() string { return s.spec.Name }

// Run executes the stage. prior is the read-only rendering of earlier context
// entries, oldest first; continuation optionally carries a prior document
// version for iterative updates.
func (s *Stage) Run(ctx context.Context, intel *types.IntelligencePackage, prior []string, continuation string) (*Output, error) {
	timer := logging.StartTimer(logging.CategoryStage, "stage:"+s.spec.Name)
	defer timer.Stop()

	prompt := s.buildPrompt(intel, prior, continuation)
	logging.StageDebug("stage %s: prompt is %d chars", s.spec.Name, len(prompt))

	text, err := s.client.CompleteWithSystem(ctx, s.instructions.For(s.spec.Name), prompt)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", s.spec.Name, err)
	}

	out := &Output{StageName: s.spec.Name, Raw: text}
	switch s.spec.Kind {
	case KindStructured:
		parsed, err := ParseStructured(text)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.spec.Name, err)
		}
		out.Structured = parsed
	case KindSections:
		out.Sections = SplitSections(text, s.spec.Name)
	}

	logging.Stage("stage %s: produced %d chars, %d sections", s.spec.Name, len(text), len(out.Sections))
	return out, nil
}

// buildPrompt assembles the user prompt from truncated projections of the
// intelligence package, the prior context entries, and the continuation.
func (s *Stage) buildPrompt(intel *types.IntelligencePackage, prior []string, continuation string) string {
	var b strings.Builder

	b.WriteString("# GATHERED INTELLIGENCE\n\n")
	b.WriteString(fmt.Sprintf("## PRIMARY: %s (%s)\n", intel.Primary.Subject.Name, intel.Primary.Subject.Domain))
	b.WriteString(s.projectSubject(intel.Primary))
	for _, c := range intel.Comparisons {
		b.WriteString(fmt.Sprintf("\n## COMPARISON: %s (%s)\n", c.Subject.Name, c.Subject.Domain))
		b.WriteString(s.projectSubject(c))
	}

	if len(prior) > 0 {
		b.WriteString("\n# PRIOR ANALYSIS\n")
		for k, entry := range prior {
			b.WriteString(fmt.Sprintf("\n## Step %d\n", k+1))
			b.WriteString(Truncate(entry, s.budgets.ContextBudget))
			b.WriteString("\n")
		}
	}

	if continuation != "" {
		b.WriteString("\n# PREVIOUS REPORT VERSION\n")
		b.WriteString(Truncate(continuation, s.budgets.ContinuationBudget))
		b.WriteString("\n")
	}

	return b.String()
}

// projectSubject renders one subject's streams as indented JSON, filtered to
// the stage's declared streams and capped by the intelligence budget.
func (s *Stage) projectSubject(si types.SubjectIntelligence) string {
	streams := si.Streams
	if len(s.spec.Streams) > 0 {
		streams = make(map[string]types.StreamResult, len(s.spec.Streams))
		for _, name := range s.spec.Streams {
			if sr, found := si.Streams[name]; found {
				streams[name] = sr
			}
		}
	}

	data, err := json.MarshalIndent(streams, "", "  ")
	if err != nil {
		// Raw payloads are already JSON, so this only fires on a logic error.
		return fmt.Sprintf("(projection failed: %v)\n", err)
	}
	return Truncate(string(data), s.budgets.IntelligenceBudget) + "\n"
}
