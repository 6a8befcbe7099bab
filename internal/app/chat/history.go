/*
Package chat contains the core logic for the chat service.

This file defines the History struct, the in-memory append-only log of chat
messages replayed to newly joined clients. The log lives for the life of the
process, or until an operator purge clears it atomically.
*/
package chat

import "sync"

// Entry is one recorded chat message: who sent it and what was said.
type Entry struct {
	From string
	Text string
}

// History is a mutex-guarded, append-only, insertion-ordered message log.
type History struct {
	// mu protects concurrent access to entries.
	mu sync.RWMutex

	// entries holds the recorded messages in arrival order.
	entries []Entry
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{}
}

// Append records a message at the end of the log.
func (h *History) Append(from, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, Entry{From: from, Text: text})
}

// Snapshot returns a copy of the log in insertion order. Callers may iterate
// it freely without holding any lock.
func (h *History) Snapshot() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Purge atomically clears the log and returns the number of entries removed.
func (h *History) Purge() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := len(h.entries)
	h.entries = nil
	return count
}

// Len returns the current number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}
