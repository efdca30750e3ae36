package generate

import "unicode/utf8"

// TruncationMarker is appended to every cut block. Data is never silently
// dropped: a reader of the prompt can always see where the cut happened.
const TruncationMarker = "\n[...truncated]"

// Truncate caps s at budget characters and appends the marker when a cut was
// made. The result never exceeds budget + len(TruncationMarker) bytes. Cuts
// land on rune boundaries.
func Truncate(s string, budget int) string {
	if budget <= 0 || len(s) <= budget {
		return s
	}

	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + TruncationMarker
}
