package domain

import (
	"slices"
	"time"
)

// Create appends item to its collection under a fresh id and returns the new
// Snapshot together with the stored item. The id is now in unix milliseconds,
// bumped past both floor and the highest id already in the collection. Callers
// pass the highest id they ever issued as floor so ids of removed items are not
// handed out again.
func (s Snapshot) Create(item Item, now time.Time, floor ItemID) (Snapshot, Item) {
	item = normalizeItem(item, now)

	next := s
	switch v := item.(type) {
	case Book:
		v.ID = nextID(now, max(floor, maxID(s.Books)))
		next.Books = append(slices.Clip(s.Books), v)
		return next, v
	case Job:
		v.ID = nextID(now, max(floor, maxID(s.Jobs)))
		next.Jobs = append(slices.Clip(s.Jobs), v)
		return next, v
	case Word:
		v.ID = nextID(now, max(floor, maxID(s.Vocab)))
		next.Vocab = append(slices.Clip(s.Vocab), v)
		return next, v
	default:
		return s, nil
	}
}

// Update replaces the stored item with the same key. A missing key leaves the
// Snapshot untouched and reports false. A zero DateAdded keeps the stored one.
func (s Snapshot) Update(item Item) (Snapshot, bool) {
	next := s
	switch v := item.(type) {
	case Book:
		i := indexOf(s.Books, v.ID)
		if i < 0 {
			return s, false
		}
		v = normalizeItem(v, s.Books[i].DateAdded).(Book)
		next.Books = replaceAt(s.Books, i, v)
	case Job:
		i := indexOf(s.Jobs, v.ID)
		if i < 0 {
			return s, false
		}
		v = normalizeItem(v, s.Jobs[i].DateAdded).(Job)
		next.Jobs = replaceAt(s.Jobs, i, v)
	case Word:
		i := indexOf(s.Vocab, v.ID)
		if i < 0 {
			return s, false
		}
		v = normalizeItem(v, s.Vocab[i].DateAdded).(Word)
		next.Vocab = replaceAt(s.Vocab, i, v)
	default:
		return s, false
	}

	return next, true
}

// Delete removes the item with key. A missing key leaves the Snapshot
// untouched and reports false.
func (s Snapshot) Delete(key Key) (Snapshot, bool) {
	next, removed := s.DeleteSelection(NewSelection(key))
	return next, removed > 0
}

// DeleteSelection removes every selected item in one derivation and returns
// how many were removed. Keys that match nothing are ignored.
func (s Snapshot) DeleteSelection(sel SelectionSet) (Snapshot, int) {
	parts := sel.ByKind()
	next := s
	removed := 0

	if ids, ok := parts[KindReading]; ok {
		var n int
		next.Books, n = without(s.Books, ids)
		removed += n
	}
	if ids, ok := parts[KindJob]; ok {
		var n int
		next.Jobs, n = without(s.Jobs, ids)
		removed += n
	}
	if ids, ok := parts[KindVocabulary]; ok {
		var n int
		next.Vocab, n = without(s.Vocab, ids)
		removed += n
	}

	if removed == 0 {
		return s, 0
	}

	return next, removed
}

func nextID(now time.Time, highest ItemID) ItemID {
	id := ItemID(now.UnixMilli())
	if id <= highest {
		id = highest + 1
	}
	if id < 1 {
		id = 1
	}

	return id
}

func replaceAt[T any](values []T, i int, v T) []T {
	out := slices.Clone(values)
	out[i] = v
	return out
}

func without[T identified](values []T, ids map[ItemID]struct{}) ([]T, int) {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, drop := ids[idOf(v)]; drop {
			continue
		}
		out = append(out, v)
	}

	removed := len(values) - len(out)
	if removed == 0 {
		return values, 0
	}

	return out, removed
}
