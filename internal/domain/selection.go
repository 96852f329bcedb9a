package domain

import (
	"cmp"
	"slices"
)

// SelectionSet is the set of keys picked for a batch action. It lives outside
// history and is cleared by the caller after a batch delete.
type SelectionSet struct {
	keys map[Key]struct{}
}

func NewSelection(keys ...Key) SelectionSet {
	sel := SelectionSet{keys: make(map[Key]struct{}, len(keys))}
	for _, key := range keys {
		sel.keys[key] = struct{}{}
	}

	return sel
}

func (s *SelectionSet) Add(key Key) {
	if s.keys == nil {
		s.keys = make(map[Key]struct{})
	}
	s.keys[key] = struct{}{}
}

func (s *SelectionSet) Remove(key Key) {
	delete(s.keys, key)
}

// Toggle flips membership of key and reports whether it is now selected.
func (s *SelectionSet) Toggle(key Key) bool {
	if s.Has(key) {
		s.Remove(key)
		return false
	}
	s.Add(key)
	return true
}

func (s SelectionSet) Has(key Key) bool {
	_, ok := s.keys[key]
	return ok
}

func (s SelectionSet) Len() int {
	return len(s.keys)
}

func (s *SelectionSet) Clear() {
	s.keys = nil
}

// Keys returns the members ordered by kind then id.
func (s SelectionSet) Keys() []Key {
	keys := make([]Key, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if c := cmp.Compare(kindOrder(a.Kind), kindOrder(b.Kind)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return keys
}

// ByKind partitions the selection into per-kind id sets.
func (s SelectionSet) ByKind() map[Kind]map[ItemID]struct{} {
	parts := make(map[Kind]map[ItemID]struct{})
	for key := range s.keys {
		ids, ok := parts[key.Kind]
		if !ok {
			ids = make(map[ItemID]struct{})
			parts[key.Kind] = ids
		}
		ids[key.ID] = struct{}{}
	}

	return parts
}

func kindOrder(k Kind) int {
	switch k {
	case KindReading:
		return 0
	case KindJob:
		return 1
	case KindVocabulary:
		return 2
	default:
		return 3
	}
}
