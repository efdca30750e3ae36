package generate

import (
	"strings"
	"testing"
)

func TestTruncateUnderBudgetUnchanged(t *testing.T) {
	s := "short block"
	if got := Truncate(s, 100); got != s {
		t.Fatalf("Truncate() = %q, want unchanged", got)
	}
}

func TestTruncateOverBudgetEndsWithMarker(t *testing.T) {
	s := strings.Repeat("a", 500)
	got := Truncate(s, 100)

	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("truncated output must end with the marker, got %q", got[len(got)-30:])
	}
	if len(got) > 100+len(TruncationMarker) {
		t.Fatalf("len = %d, must never exceed budget + marker length (%d)", len(got), 100+len(TruncationMarker))
	}
}

func TestTruncateExactBudgetUnchanged(t *testing.T) {
	s := strings.Repeat("b", 64)
	if got := Truncate(s, 64); got != s {
		t.Fatalf("block at exactly the budget must not be cut")
	}
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 50) // 2 bytes each
	got := Truncate(s, 5)

	trimmed := strings.TrimSuffix(got, TruncationMarker)
	for _, r := range trimmed {
		if r == '�' {
			t.Fatal("truncation split a rune")
		}
	}
}
