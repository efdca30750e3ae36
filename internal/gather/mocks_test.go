package gather

import (
	"context"
	"sync/atomic"

	"dossier/internal/types"
)

// --- MockProvider ---

type MockProvider struct {
	ProviderName string
	Payload      types.RawPayload
	Err          error
	PanicMsg     string
	Calls        atomic.Int32
}

func (m *MockProvider) Name() string { return m.ProviderName }

func (m *MockProvider) Fetch(ctx context.Context, subject types.Subject) (types.RawPayload, error) {
	m.Calls.Add(1)
	if m.PanicMsg != "" {
		panic(m.PanicMsg)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Payload, nil
}

// --- MockCrawlProvider ---

type MockCrawlProvider struct {
	SubmitErr    error
	StatusErr    error
	ResultErr    error
	Payload      types.RawPayload
	PollsNeeded  int32
	StatusCalls  atomic.Int32
	SubmitCalls  atomic.Int32
	NeverDone    bool
}

func (m *MockCrawlProvider) Name() string { return "crawl" }

func (m *MockCrawlProvider) Submit(ctx context.Context, subject types.Subject) (string, error) {
	m.SubmitCalls.Add(1)
	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}
	return "crawl-1", nil
}

func (m *MockCrawlProvider) Status(ctx context.Context, crawlID string) (bool, error) {
	calls := m.StatusCalls.Add(1)
	if m.StatusErr != nil {
		return false, m.StatusErr
	}
	if m.NeverDone {
		return false, nil
	}
	return calls > m.PollsNeeded, nil
}

func (m *MockCrawlProvider) Result(ctx context.Context, crawlID string) (types.RawPayload, error) {
	if m.ResultErr != nil {
		return nil, m.ResultErr
	}
	return m.Payload, nil
}

func transientErr(provider string) *types.ProviderError {
	return &types.ProviderError{Provider: provider, Kind: types.ErrorTransient, Message: "connection reset"}
}

func paywallErr(provider string) *types.ProviderError {
	return &types.ProviderError{Provider: provider, Kind: types.ErrorFeatureUnavailable, Message: "upgrade required"}
}
