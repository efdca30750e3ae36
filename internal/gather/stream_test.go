package gather

import (
	"context"
	"testing"

	"dossier/internal/types"
)

func TestStreamGatherCollectsAllProviders(t *testing.T) {
	a := &MockProvider{ProviderName: "linkedin", Payload: types.RawPayload(`{"followers":10}`)}
	b := &MockProvider{ProviderName: "youtube", Payload: types.RawPayload(`{"subs":20}`)}
	g := NewStreamGatherer(StreamSocial, a, b)

	sr := g.Gather(context.Background(), types.Subject{Name: "Acme", Domain: "acme.io"})

	if sr.Stream != StreamSocial {
		t.Fatalf("stream = %q, want %q", sr.Stream, StreamSocial)
	}
	if len(sr.Payloads) != 2 {
		t.Fatalf("payloads = %d, want 2", len(sr.Payloads))
	}
	if len(sr.Errors) != 0 {
		t.Fatalf("errors = %v, want none", sr.Errors)
	}
}

func TestStreamGatherIsolatesFailures(t *testing.T) {
	ok := &MockProvider{ProviderName: "linkedin", Payload: types.RawPayload(`{"followers":10}`)}
	broken := &MockProvider{ProviderName: "youtube", Err: transientErr("youtube")}
	g := NewStreamGatherer(StreamSocial, ok, broken)

	sr := g.Gather(context.Background(), types.Subject{Name: "Acme"})

	if _, found := sr.Payloads["linkedin"]; !found {
		t.Fatal("healthy provider's payload was lost")
	}
	if len(sr.Errors) != 1 || sr.Errors[0].Provider != "youtube" {
		t.Fatalf("errors = %v, want one youtube error", sr.Errors)
	}
}

func TestStreamGatherAllProvidersFail(t *testing.T) {
	g := NewStreamGatherer(StreamOrganic,
		&MockProvider{ProviderName: "serp", Err: transientErr("serp")},
	)

	sr := g.Gather(context.Background(), types.Subject{Name: "Acme"})

	if len(sr.Payloads) != 0 {
		t.Fatalf("payloads = %v, want empty", sr.Payloads)
	}
	if len(sr.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(sr.Errors))
	}
}

func TestStreamGatherPaywallDegradesToEmptyPayload(t *testing.T) {
	g := NewStreamGatherer(StreamPaid,
		&MockProvider{ProviderName: "ads", Err: paywallErr("ads")},
	)

	sr := g.Gather(context.Background(), types.Subject{Name: "Acme"})

	if string(sr.Payloads["ads"]) != `[]` {
		t.Fatalf("paywalled provider should record an empty payload, got %q", sr.Payloads["ads"])
	}
	if len(sr.Errors) != 1 || sr.Errors[0].Kind != types.ErrorFeatureUnavailable {
		t.Fatalf("errors = %v, want one feature_unavailable entry", sr.Errors)
	}
}

func TestStreamGatherWrapsUntypedErrors(t *testing.T) {
	g := NewStreamGatherer(StreamOrganic,
		&MockProvider{ProviderName: "serp", Err: context.DeadlineExceeded},
	)

	sr := g.Gather(context.Background(), types.Subject{Name: "Acme"})

	if len(sr.Errors) != 1 || sr.Errors[0].Kind != types.ErrorPermanent {
		t.Fatalf("untyped error should normalize to permanent, got %v", sr.Errors)
	}
}
