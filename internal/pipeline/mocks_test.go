package pipeline

import (
	"context"
	"fmt"
	"time"

	"dossier/internal/generate"
	"dossier/internal/types"
)

// --- MockGatherer ---

type MockGatherer struct {
	Package *types.IntelligencePackage
	Calls   int
}

func (m *MockGatherer) Gather(ctx context.Context, primary types.Subject, comparisons []types.Subject) *types.IntelligencePackage {
	m.Calls++
	if m.Package != nil {
		return m.Package
	}
	return &types.IntelligencePackage{
		Primary:    types.SubjectIntelligence{Subject: primary, Streams: map[string]types.StreamResult{}},
		GatheredAt: time.Now(),
	}
}

// --- MockStage ---

type MockStage struct {
	StageName        string
	Output           *generate.Output
	Err              error
	SeenPrior        [][]string
	SeenContinuation []string
	Calls            int
}

func (m *MockStage) Name() string { return m.StageName }

func (m *MockStage) Run(ctx context.Context, intel *types.IntelligencePackage, prior []string, continuation string) (*generate.Output, error) {
	m.Calls++
	m.SeenPrior = append(m.SeenPrior, append([]string{}, prior...))
	m.SeenContinuation = append(m.SeenContinuation, continuation)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Output != nil {
		return m.Output, nil
	}
	return &generate.Output{
		StageName: m.StageName,
		Raw:       fmt.Sprintf("raw output of %s", m.StageName),
		Sections:  []types.Section{{Name: m.StageName, Markdown: "body", WordCount: 1}},
	}, nil
}

func structuredStage(name, title string) *MockStage {
	return &MockStage{
		StageName: name,
		Output: &generate.Output{
			StageName:  name,
			Raw:        fmt.Sprintf("raw output of %s", name),
			Structured: &generate.StructuredOutput{Title: title, Summary: "summary of " + name, KeyFindings: []string{"finding"}},
		},
	}
}
