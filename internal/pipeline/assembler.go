package pipeline

import (
	"fmt"
	"strings"
	"time"

	"dossier/internal/generate"
	"dossier/internal/types"
)

// Static boilerplate merged into every report.
const (
	boilerplateMethodology = `This report was assembled from publicly observable signals: social
presence, organic search visibility, paid media activity, and a crawl of the
primary company's website. Sections were synthesized by a generative model
from that data and should be validated against first-party analytics.`

	boilerplateDisclaimer = `Figures reflect the state of third-party data sources at gathering
time and may lag reality. Provider outages during gathering are listed in the
report metadata.`
)

// Assembler merges generated fragments with static boilerplate into one
// coherent document. Pure data transformation: no external calls.
type Assembler struct {
	model   string
	version string
}

// NewAssembler creates an assembler stamping the given model and version
// into document metadata.
func NewAssembler(model, version string) *Assembler {
	return &Assembler{model: model, version: version}
}

// Assemble builds the final document from the stage outputs in pipeline
// order. It fails only on a logic error (no structured stage produced the
// title), which the runner surfaces as a failed run.
func (a *Assembler) Assemble(intel *types.IntelligencePackage, outputs []*generate.Output) (*types.GeneratedDocument, error) {
	var title, summary string
	var sections []types.Section

	for _, out := range outputs {
		switch {
		case out.Structured != nil:
			if title == "" {
				title = out.Structured.Title
				summary = out.Structured.Summary
			}
			sections = append(sections, structuredSection(out))
		default:
			sections = append(sections, out.Sections...)
		}
	}

	if title == "" {
		return nil, fmt.Errorf("assembling failed: no structured stage produced a title")
	}

	doc := &types.GeneratedDocument{
		Title:    title,
		Summary:  summary,
		Sections: sections,
		Metadata: types.DocumentMetadata{
			Model:       a.model,
			Version:     a.version,
			GeneratedAt: time.Now().UTC(),
			Errors:      intel.AllErrors(),
		},
	}
	doc.FullText = renderFullText(doc)
	return doc, nil
}

// structuredSection renders a structured stage output as a named section.
func structuredSection(out *generate.Output) types.Section {
	var b strings.Builder
	b.WriteString(out.Structured.Summary)
	if len(out.Structured.KeyFindings) > 0 {
		b.WriteString("\n")
		for _, f := range out.Structured.KeyFindings {
			b.WriteString("\n- ")
			b.WriteString(f)
		}
	}
	md := b.String()
	return types.Section{
		Name:      sectionTitle(out.StageName),
		Markdown:  md,
		WordCount: len(strings.Fields(md)),
	}
}

func sectionTitle(stage string) string {
	switch stage {
	case generate.StagePositioning:
		return "Positioning Analysis"
	case generate.StageExecutive:
		return "Executive Summary"
	default:
		return stage
	}
}

// renderFullText flattens the document into one markdown text with the
// static boilerplate in place.
func renderFullText(doc *types.GeneratedDocument) string {
	var b strings.Builder
	b.WriteString("# " + doc.Title + "\n\n")
	b.WriteString(doc.Summary + "\n\n")
	b.WriteString("## Methodology\n\n" + boilerplateMethodology + "\n\n")
	for _, s := range doc.Sections {
		b.WriteString("## " + s.Name + "\n\n")
		b.WriteString(s.Markdown + "\n\n")
	}
	b.WriteString("---\n\n" + boilerplateDisclaimer + "\n")
	return b.String()
}
