// Package tui provides a Bubble Tea terminal UI for the SpellCore combat console.
package tui

import "strings"

// History keeps the last submitted console commands. Navigation can be
// narrowed to the entries that start with what is already typed, so
// "cast f" followed by Up walks back through the fire spells only.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating
	prefix  string
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push adds a command to history. Consecutive duplicates are skipped.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// Search restricts Prev and Next to entries starting with prefix
// (case-insensitive). It only takes effect when not already navigating.
func (h *History) Search(prefix string) {
	if h.cursor == -1 {
		h.prefix = strings.ToLower(prefix)
	}
}

func (h *History) matches(i int) bool {
	return strings.HasPrefix(strings.ToLower(h.entries[i]), h.prefix)
}

// Prev returns the previous (older) matching entry. At the oldest match
// it stays put. Returns ("", false) when nothing matches.
func (h *History) Prev() (string, bool) {
	start := len(h.entries) - 1
	if h.cursor != -1 {
		start = h.cursor - 1
	}
	for i := start; i >= 0; i-- {
		if h.matches(i) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	if h.cursor != -1 {
		return h.entries[h.cursor], true
	}
	return "", false
}

// Next returns the next (newer) matching entry, or ("", false) once
// navigation runs past the newest one.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	for i := h.cursor + 1; i < len(h.entries); i++ {
		if h.matches(i) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	h.cursor = -1
	return "", false
}

// ResetCursor leaves navigation and drops the search prefix.
func (h *History) ResetCursor() {
	h.cursor = -1
	h.prefix = ""
}
