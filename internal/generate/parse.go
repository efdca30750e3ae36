package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"dossier/internal/types"
)

// SectionMarker lines split free-text output into named fragments.
// Format: <<SECTION: Chapter Name>>
const (
	sectionMarkerPrefix = "<<SECTION:"
	sectionMarkerSuffix = ">>"
)

// StructuredOutput is the declared shape for structured stages.
type StructuredOutput struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyFindings []string `json:"key_findings"`
}

// ShapeMismatchError reports model output that does not match the declared
// shape. Fatal to the stage; callers handle it as a typed branch, not a panic.
type ShapeMismatchError struct {
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("output does not match expected shape: %s", e.Reason)
}

// ParseStructured extracts a StructuredOutput from model text. Code fences
// and surrounding prose are tolerated; the first balanced JSON object wins.
func ParseStructured(text string) (*StructuredOutput, error) {
	raw := extractJSONObject(text)
	if raw == "" {
		return nil, &ShapeMismatchError{Reason: "no JSON object found"}
	}

	var out StructuredOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &ShapeMismatchError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if out.Title == "" || out.Summary == "" {
		return nil, &ShapeMismatchError{Reason: "missing required fields title/summary"}
	}
	return &out, nil
}

// extractJSONObject returns the first balanced top-level JSON object in text,
// ignoring braces inside strings.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// SplitSections splits free text on embedded section markers into named
// sections with derived word counts. Text without markers becomes a single
// section named fallback.
func SplitSections(text, fallback string) []types.Section {
	lines := strings.Split(text, "\n")

	var sections []types.Section
	name := ""
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if name == "" && content == "" {
			body = nil
			return
		}
		n := name
		if n == "" {
			n = fallback
		}
		sections = append(sections, types.Section{
			Name:      n,
			Markdown:  content,
			WordCount: len(strings.Fields(content)),
		})
		body = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, sectionMarkerPrefix) && strings.HasSuffix(trimmed, sectionMarkerSuffix) {
			flush()
			name = strings.TrimSpace(trimmed[len(sectionMarkerPrefix) : len(trimmed)-len(sectionMarkerSuffix)])
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}
