package server

import "sync"

// Entry is one conversation turn kept for chat context.
type Entry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// History is a bounded conversation buffer: once the limit is reached
// the oldest entries are dropped. Safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

// NewHistory creates a History holding at most limit entries
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 10
	}
	return &History{limit: limit}
}

// Add appends an entry, evicting the oldest past the limit
func (h *History) Add(role, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, Entry{Role: role, Text: text})
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Entries returns a copy of the buffered conversation, oldest first
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear drops all buffered entries
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
