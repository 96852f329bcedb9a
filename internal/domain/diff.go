package domain

import "slices"

type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// Change is one per-key difference between two Snapshots. Item holds the new
// value for inserts and updates and the removed value for deletes.
type Change struct {
	Op   ChangeOp
	Key  Key
	Item Item
}

// Diff lists the changes that turn old into next. Collections are visited in
// books, jobs, vocab order; within a collection deletes come first in old
// order, then inserts and updates in new order.
func Diff(old, next Snapshot) []Change {
	var changes []Change
	changes = appendDiff(changes, old.Books, next.Books, booksEqual)
	changes = appendDiff(changes, old.Jobs, next.Jobs, jobsEqual)
	changes = appendDiff(changes, old.Vocab, next.Vocab, wordsEqual)

	return changes
}

type diffable interface {
	identified
	Item
}

func appendDiff[T diffable](changes []Change, old, next []T, equal func(a, b T) bool) []Change {
	before := make(map[ItemID]T, len(old))
	for _, v := range old {
		before[idOf(v)] = v
	}
	after := make(map[ItemID]struct{}, len(next))
	for _, v := range next {
		after[idOf(v)] = struct{}{}
	}

	for _, v := range old {
		if _, ok := after[idOf(v)]; !ok {
			changes = append(changes, Change{Op: ChangeDelete, Key: v.Key(), Item: v})
		}
	}

	for _, v := range next {
		prev, ok := before[idOf(v)]
		switch {
		case !ok:
			changes = append(changes, Change{Op: ChangeInsert, Key: v.Key(), Item: v})
		case !equal(prev, v):
			changes = append(changes, Change{Op: ChangeUpdate, Key: v.Key(), Item: v})
		}
	}

	return changes
}

func booksEqual(a, b Book) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Author == b.Author &&
		a.Pages == b.Pages &&
		a.Status == b.Status &&
		a.Rating == b.Rating &&
		a.DateAdded.Equal(b.DateAdded) &&
		slices.Equal(a.Tags, b.Tags)
}

func jobsEqual(a, b Job) bool {
	return a.ID == b.ID &&
		a.Company == b.Company &&
		a.Position == b.Position &&
		a.Status == b.Status &&
		a.DateAdded.Equal(b.DateAdded) &&
		slices.Equal(a.Tags, b.Tags)
}

func wordsEqual(a, b Word) bool {
	return a.ID == b.ID &&
		a.Word == b.Word &&
		a.Translation == b.Translation &&
		a.Language == b.Language &&
		a.Mastery == b.Mastery &&
		a.DateAdded.Equal(b.DateAdded) &&
		slices.Equal(a.Tags, b.Tags)
}
