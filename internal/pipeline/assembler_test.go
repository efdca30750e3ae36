package pipeline

import (
	"strings"
	"testing"

	"dossier/internal/generate"
	"dossier/internal/types"
)

func TestAssembleMergesFragmentsAndBoilerplate(t *testing.T) {
	intel := &types.IntelligencePackage{
		Primary: types.SubjectIntelligence{
			Subject: types.Subject{Name: "Acme"},
			Errors:  []types.ProviderError{{Provider: "ads", Kind: types.ErrorTransient, Message: "down"}},
		},
	}
	outputs := []*generate.Output{
		{
			StageName:  generate.StagePositioning,
			Structured: &generate.StructuredOutput{Title: "Acme vs Field", Summary: "Acme leads.", KeyFindings: []string{"f1", "f2"}},
		},
		{
			StageName: generate.StageLandscape,
			Sections: []types.Section{
				{Name: "Market Position", Markdown: "Top spot.", WordCount: 2},
			},
		},
	}

	doc, err := NewAssembler("gemini-2.5-pro", "1.0.0").Assemble(intel, outputs)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Title != "Acme vs Field" || doc.Summary != "Acme leads." {
		t.Fatalf("title/summary = %q / %q", doc.Title, doc.Summary)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Positioning Analysis" {
		t.Fatalf("structured stage section = %q", doc.Sections[0].Name)
	}
	if doc.Sections[0].WordCount == 0 {
		t.Fatal("derived word count missing")
	}

	// Boilerplate and fragments land in the assembled text.
	for _, want := range []string{"# Acme vs Field", "## Methodology", "## Market Position", "Top spot.", "- f1"} {
		if !strings.Contains(doc.FullText, want) {
			t.Errorf("full text missing %q", want)
		}
	}

	// Upstream provider failures ride along as metadata.
	if len(doc.Metadata.Errors) != 1 || doc.Metadata.Errors[0].Provider != "ads" {
		t.Fatalf("metadata errors = %v", doc.Metadata.Errors)
	}
	if doc.Metadata.Model != "gemini-2.5-pro" || doc.Metadata.Version != "1.0.0" {
		t.Fatalf("metadata = %+v", doc.Metadata)
	}
}

func TestAssembleWithoutStructuredStageFails(t *testing.T) {
	outputs := []*generate.Output{
		{StageName: generate.StageLandscape, Sections: []types.Section{{Name: "X", Markdown: "y", WordCount: 1}}},
	}
	_, err := NewAssembler("m", "v").Assemble(&types.IntelligencePackage{}, outputs)
	if err == nil {
		t.Fatal("expected logic error when no stage produced a title")
	}
}

func TestAssembleFirstStructuredStageWinsTitle(t *testing.T) {
	outputs := []*generate.Output{
		{StageName: generate.StagePositioning, Structured: &generate.StructuredOutput{Title: "First", Summary: "s1"}},
		{StageName: generate.StageExecutive, Structured: &generate.StructuredOutput{Title: "Second", Summary: "s2"}},
	}
	doc, err := NewAssembler("m", "v").Assemble(&types.IntelligencePackage{}, outputs)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "First" {
		t.Fatalf("title = %q, want First", doc.Title)
	}
	if doc.Sections[1].Name != "Executive Summary" {
		t.Fatalf("executive section = %q", doc.Sections[1].Name)
	}
}
