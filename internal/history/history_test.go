package history

import (
	"testing"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(title string) domain.Snapshot {
	if title == "" {
		return domain.Snapshot{}
	}
	return domain.Snapshot{Books: []domain.Book{{ID: 1, Title: title, Author: "x", Status: domain.BookReading}}}
}

func titles(entries []domain.Snapshot) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		if len(e.Books) > 0 {
			out[i] = e.Books[0].Title
		}
	}
	return out
}

func TestNewHoldsSeed(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 10)

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Cursor())
	assert.Equal(t, snap("seed"), h.Current())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestNewFallsBackToDefaultCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -3} {
		assert.Equal(t, DefaultCapacity, New(snap("seed"), capacity).Capacity())
	}
}

func TestCurrentIsLastCommit(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 10)
	h.Commit(snap("A"))
	h.Commit(snap("B"))

	assert.Equal(t, snap("B"), h.Current())
	assert.Equal(t, 2, h.Cursor())
}

func TestUndoThenRedoRestores(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 10)
	h.Commit(snap("A"))
	before := h.Current()

	prev, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, snap("seed"), prev)

	next, ok := h.Redo()
	require.True(t, ok)
	assert.Equal(t, before, next)
	assert.Equal(t, before, h.Current())
}

func TestBoundariesAreNoOps(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 10)

	got, ok := h.Undo()
	assert.False(t, ok)
	assert.Equal(t, snap("seed"), got)
	assert.Equal(t, 0, h.Cursor())

	got, ok = h.Redo()
	assert.False(t, ok)
	assert.Equal(t, snap("seed"), got)
	assert.Equal(t, 1, h.Len())
}

func TestCommitAfterUndoDiscardsRedoFuture(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 10)
	h.Commit(snap("A"))
	h.Commit(snap("B"))
	h.Commit(snap("C"))
	h.Undo()
	h.Undo()
	h.Commit(snap("D"))

	_, ok := h.Redo()
	assert.False(t, ok)
	assert.Equal(t, []string{"seed", "A", "D"}, titles(h.Entries()))
	assert.Equal(t, 2, h.Cursor())
}

func TestCapacityEvictsOldest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity int
		commits  []string
		want     []string
	}{
		{name: "at capacity keeps everything", capacity: 3, commits: []string{"A", "B"}, want: []string{"seed", "A", "B"}},
		{name: "one over drops seed", capacity: 3, commits: []string{"A", "B", "C"}, want: []string{"A", "B", "C"}},
		{name: "many over keeps most recent", capacity: 2, commits: []string{"A", "B", "C", "D", "E"}, want: []string{"D", "E"}},
		{name: "capacity one keeps only current", capacity: 1, commits: []string{"A", "B"}, want: []string{"B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := New(snap("seed"), tt.capacity)
			for _, c := range tt.commits {
				h.Commit(snap(c))
			}

			assert.Equal(t, tt.want, titles(h.Entries()))
			assert.Equal(t, h.Len()-1, h.Cursor())
			assert.LessOrEqual(t, h.Len(), tt.capacity)
		})
	}
}

func TestEvictionShiftsCursorAfterUndo(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 3)
	h.Commit(snap("A"))
	h.Commit(snap("B"))
	h.Undo()
	h.Commit(snap("C"))
	h.Commit(snap("D"))

	assert.Equal(t, []string{"A", "C", "D"}, titles(h.Entries()))
	assert.Equal(t, 2, h.Cursor())

	got, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, snap("C"), got)
}

func TestEntriesIsACopy(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 5)
	h.Commit(snap("A"))

	entries := h.Entries()
	entries[0] = snap("mutated")

	assert.Equal(t, []string{"seed", "A"}, titles(h.Entries()))
}

func TestInfo(t *testing.T) {
	t.Parallel()

	h := New(snap("seed"), 4)
	h.Commit(snap("A"))
	h.Undo()

	assert.Equal(t, Info{Cursor: 0, Len: 2, Capacity: 4, CanUndo: false, CanRedo: true}, h.Info())
}
