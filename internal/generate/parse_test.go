package generate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dossier/internal/types"
)

func TestParseStructuredPlainObject(t *testing.T) {
	out, err := ParseStructured(`{"title":"Acme vs Rival","summary":"Acme leads.","key_findings":["a","b"]}`)
	if err != nil {
		t.Fatal(err)
	}
	if out.Title != "Acme vs Rival" || len(out.KeyFindings) != 2 {
		t.Fatalf("unexpected parse: %+v", out)
	}
}

func TestParseStructuredInsideCodeFence(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"title\":\"T\",\"summary\":\"S\"}\n```\nDone."
	out, err := ParseStructured(text)
	if err != nil {
		t.Fatal(err)
	}
	if out.Title != "T" || out.Summary != "S" {
		t.Fatalf("unexpected parse: %+v", out)
	}
}

func TestParseStructuredBracesInsideStrings(t *testing.T) {
	out, err := ParseStructured(`{"title":"braces { in } strings","summary":"ok"}`)
	if err != nil {
		t.Fatal(err)
	}
	if out.Title != "braces { in } strings" {
		t.Fatalf("unexpected title: %q", out.Title)
	}
}

func TestParseStructuredShapeMismatch(t *testing.T) {
	cases := map[string]string{
		"no JSON at all":   "The company is doing well.",
		"missing required": `{"key_findings":["a"]}`,
		"invalid JSON":     `{"title": "T", "summary": `,
	}
	for name, text := range cases {
		_, err := ParseStructured(text)
		var sm *ShapeMismatchError
		if !errors.As(err, &sm) {
			t.Errorf("%s: expected ShapeMismatchError, got %v", name, err)
		}
	}
}

func TestSplitSections(t *testing.T) {
	text := `<<SECTION: Market Position>>
Acme holds the top spot.

<<SECTION: Content Strategy>>
Rival publishes twice as often.`

	got := SplitSections(text, "landscape")
	want := []types.Section{
		{Name: "Market Position", Markdown: "Acme holds the top spot.", WordCount: 5},
		{Name: "Content Strategy", Markdown: "Rival publishes twice as often.", WordCount: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SplitSections mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitSectionsNoMarkersFallsBack(t *testing.T) {
	got := SplitSections("Just one block of analysis.", "channels")
	if len(got) != 1 || got[0].Name != "channels" {
		t.Fatalf("expected single fallback section, got %+v", got)
	}
	if got[0].WordCount != 5 {
		t.Fatalf("word count = %d, want 5", got[0].WordCount)
	}
}

func TestSplitSectionsKeepsOrder(t *testing.T) {
	text := "<<SECTION: C>>\nc\n<<SECTION: A>>\na\n<<SECTION: B>>\nb"
	got := SplitSections(text, "x")
	names := []string{got[0].Name, got[1].Name, got[2].Name}
	if names[0] != "C" || names[1] != "A" || names[2] != "B" {
		t.Fatalf("sections reordered: %v", names)
	}
}
