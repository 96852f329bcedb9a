// Package history keeps a bounded, linear timeline of dashboard snapshots.
//
// Every accepted mutation commits one full snapshot. Undo and redo only move
// the cursor; committing after an undo discards the redo future, so there is
// never more than one branch.
package history

import "github.com/bnema/growth-dashboard/internal/domain"

// DefaultCapacity is used when New receives a capacity below one.
const DefaultCapacity = 50

// History is owned by a single dashboard session and is not safe for
// concurrent use.
type History struct {
	entries  []domain.Snapshot
	cursor   int
	capacity int
}

// New returns a History holding only seed.
func New(seed domain.Snapshot, capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &History{
		entries:  []domain.Snapshot{seed},
		capacity: capacity,
	}
}

// Commit makes s the current snapshot. Entries after the cursor are dropped,
// and the oldest entries are evicted once the timeline exceeds capacity.
func (h *History) Commit(s domain.Snapshot) {
	tail := h.entries[h.cursor+1:]
	clear(tail)
	h.entries = append(h.entries[:h.cursor+1], s)
	h.cursor = len(h.entries) - 1

	if excess := len(h.entries) - h.capacity; excess > 0 {
		n := copy(h.entries, h.entries[excess:])
		clear(h.entries[n:])
		h.entries = h.entries[:n]
		h.cursor -= excess
	}
}

// Undo steps back one entry. It reports false at the oldest entry.
func (h *History) Undo() (domain.Snapshot, bool) {
	if h.cursor == 0 {
		return h.entries[h.cursor], false
	}

	h.cursor--
	return h.entries[h.cursor], true
}

// Redo steps forward one entry. It reports false at the newest entry.
func (h *History) Redo() (domain.Snapshot, bool) {
	if h.cursor == len(h.entries)-1 {
		return h.entries[h.cursor], false
	}

	h.cursor++
	return h.entries[h.cursor], true
}

func (h *History) Current() domain.Snapshot {
	return h.entries[h.cursor]
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Cursor() int {
	return h.cursor
}

func (h *History) Capacity() int {
	return h.capacity
}

// Entries returns the timeline oldest first. The slice is a copy; the
// snapshots themselves are shared and must not be modified.
func (h *History) Entries() []domain.Snapshot {
	out := make([]domain.Snapshot, len(h.entries))
	copy(out, h.entries)
	return out
}

// Info summarises cursor position for display.
type Info struct {
	Cursor   int
	Len      int
	Capacity int
	CanUndo  bool
	CanRedo  bool
}

func (h *History) Info() Info {
	return Info{
		Cursor:   h.cursor,
		Len:      len(h.entries),
		Capacity: h.capacity,
		CanUndo:  h.CanUndo(),
		CanRedo:  h.CanRedo(),
	}
}
