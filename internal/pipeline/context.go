// Package pipeline executes the fixed sequence of generation stages over one
// gathered intelligence package and assembles the finished document.
package pipeline

import (
	"time"
)

// Entry is one committed stage output in the context log.
type Entry struct {
	Stage   string
	Text    string
	AddedAt time.Time
}

// ContextLog is the ordered, append-only record of prior stage outputs within
// one run. Each successful stage appends exactly one entry; later stages
// consume it read-only. A log is owned by a single run and never shared, so
// no locking is needed.
type ContextLog struct {
	entries []Entry
}

// NewContextLog creates an empty log.
func NewContextLog() *ContextLog {
	return &ContextLog{}
}

// Append commits one stage's output.
func (l *ContextLog) Append(stage, text string) {
	l.entries = append(l.entries, Entry{Stage: stage, Text: text, AddedAt: time.Now()})
}

// Len returns the number of committed entries.
func (l *ContextLog) Len() int { return len(l.entries) }

// Entries returns a copy of the committed entries, oldest first.
func (l *ContextLog) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Rendered returns the entry texts in commit order, for prompt construction.
func (l *ContextLog) Rendered() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Text
	}
	return out
}
