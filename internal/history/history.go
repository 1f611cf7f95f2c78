// Package history tracks visited directories as a back/forward stack, the
// way a browser does: navigating somewhere new while positioned mid-stack
// discards the forward branch.
package history

import (
	"sync"

	"github.com/navegante/navegante/internal/pathutil"
)

// History is a back/forward navigation stack. The zero value is not usable;
// call New. Safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []string
	idx     int // position of the current entry, -1 when empty
}

// New returns an empty history.
func New() *History {
	return &History{idx: -1}
}

// Push records a visit to path. Paths are canonicalized so "~/docs" and its
// absolute form count as one entry. Visiting the current entry again is a
// no-op. Any forward branch is discarded.
func (h *History) Push(path string) {
	canonical, err := pathutil.ResolveAbsolutePath(path)
	if err != nil {
		canonical = path
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.idx >= 0 && h.entries[h.idx] == canonical {
		return
	}

	h.entries = append(h.entries[:h.idx+1], canonical)
	h.idx = len(h.entries) - 1
}

// Current returns the entry at the current position.
func (h *History) Current() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.idx < 0 {
		return "", false
	}
	return h.entries[h.idx], true
}

// Back moves one step back and returns the new current entry. At the oldest
// entry (or empty) it reports false and does not move.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.idx <= 0 {
		return "", false
	}
	h.idx--
	return h.entries[h.idx], true
}

// Forward moves one step forward and returns the new current entry. At the
// newest entry it reports false and does not move.
func (h *History) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.idx < 0 || h.idx >= len(h.entries)-1 {
		return "", false
	}
	h.idx++
	return h.entries[h.idx], true
}

// CanBack reports whether Back would move.
func (h *History) CanBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.idx > 0
}

// CanForward reports whether Forward would move.
func (h *History) CanForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.idx >= 0 && h.idx < len(h.entries)-1
}

// Len returns the number of entries on the stack.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
