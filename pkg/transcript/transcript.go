// Package transcript keeps the human-readable record of an intake session
// and formats generated text for the terminal.
package transcript

import (
	"fmt"
	"strings"
)

const (
	chatBegin = "<<BEGIN PATIENT INTAKE CHAT>>"
	chatEnd   = "<<END PATIENT INTAKE CHAT>>"
)

// Entry is one labeled line of the transcript.
type Entry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// String renders the entry as "SPEAKER: text".
func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.Speaker, e.Text)
}

// Transcript is an ordered, append-only log of entries. It is independent
// of the conversation sent to the completion service.
type Transcript struct {
	entries []Entry
}

// Add appends an entry.
func (t *Transcript) Add(speaker, text string) {
	t.entries = append(t.entries, Entry{Speaker: speaker, Text: text})
}

// Entries returns a copy of the recorded entries.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// ChatLog renders all entries between the intake chat markers, separated by
// blank lines.
func (t *Transcript) ChatLog() string {
	lines := make([]string, len(t.entries))
	for i, e := range t.entries {
		lines[i] = e.String()
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", chatBegin, strings.Join(lines, "\n\n"), chatEnd)
}
