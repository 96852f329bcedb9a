package domain

import "slices"

// Snapshot is the complete state of the three collections at one point in
// time. A committed Snapshot is never modified; derivations copy the
// collection they touch and share the others.
type Snapshot struct {
	Books []Book
	Jobs  []Job
	Vocab []Word
}

// Items returns the collection for kind as Items, in stored order.
func (s Snapshot) Items(kind Kind) []Item {
	switch kind {
	case KindReading:
		return toItems(s.Books)
	case KindJob:
		return toItems(s.Jobs)
	case KindVocabulary:
		return toItems(s.Vocab)
	default:
		return nil
	}
}

// Len returns the size of the collection for kind.
func (s Snapshot) Len(kind Kind) int {
	switch kind {
	case KindReading:
		return len(s.Books)
	case KindJob:
		return len(s.Jobs)
	case KindVocabulary:
		return len(s.Vocab)
	default:
		return 0
	}
}

func (s Snapshot) Total() int {
	return len(s.Books) + len(s.Jobs) + len(s.Vocab)
}

// Find looks an item up by key.
func (s Snapshot) Find(key Key) (Item, bool) {
	switch key.Kind {
	case KindReading:
		if i := indexOf(s.Books, key.ID); i >= 0 {
			return s.Books[i], true
		}
	case KindJob:
		if i := indexOf(s.Jobs, key.ID); i >= 0 {
			return s.Jobs[i], true
		}
	case KindVocabulary:
		if i := indexOf(s.Vocab, key.ID); i >= 0 {
			return s.Vocab[i], true
		}
	}

	return nil, false
}

// Clone returns a Snapshot that shares no backing arrays with s.
// MaxID returns the highest id in the collection of kind, zero when empty.
func (s Snapshot) MaxID(kind Kind) ItemID {
	switch kind {
	case KindReading:
		return maxID(s.Books)
	case KindJob:
		return maxID(s.Jobs)
	case KindVocabulary:
		return maxID(s.Vocab)
	default:
		return 0
	}
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Books: cloneBooks(s.Books),
		Jobs:  cloneJobs(s.Jobs),
		Vocab: cloneWords(s.Vocab),
	}
}

// SnapshotFromItems groups items by kind, keeping their relative order.
func SnapshotFromItems(items []Item) Snapshot {
	var snap Snapshot
	for _, item := range items {
		switch v := item.(type) {
		case Book:
			snap.Books = append(snap.Books, v)
		case Job:
			snap.Jobs = append(snap.Jobs, v)
		case Word:
			snap.Vocab = append(snap.Vocab, v)
		}
	}

	return snap
}

// AllItems flattens the snapshot in books, jobs, vocab order.
func (s Snapshot) AllItems() []Item {
	items := make([]Item, 0, s.Total())
	for _, kind := range Kinds() {
		items = append(items, s.Items(kind)...)
	}

	return items
}

func toItems[T Item](values []T) []Item {
	items := make([]Item, len(values))
	for i, v := range values {
		items[i] = v
	}

	return items
}

type identified interface {
	Book | Job | Word
}

func idOf[T identified](v T) ItemID {
	switch x := any(v).(type) {
	case Book:
		return x.ID
	case Job:
		return x.ID
	case Word:
		return x.ID
	default:
		return 0
	}
}

func indexOf[T identified](values []T, id ItemID) int {
	return slices.IndexFunc(values, func(v T) bool { return idOf(v) == id })
}

func maxID[T identified](values []T) ItemID {
	var highest ItemID
	for _, v := range values {
		if id := idOf(v); id > highest {
			highest = id
		}
	}

	return highest
}

func cloneBooks(values []Book) []Book {
	out := slices.Clone(values)
	for i := range out {
		out[i].Tags = slices.Clone(out[i].Tags)
	}

	return out
}

func cloneJobs(values []Job) []Job {
	out := slices.Clone(values)
	for i := range out {
		out[i].Tags = slices.Clone(out[i].Tags)
	}

	return out
}

func cloneWords(values []Word) []Word {
	out := slices.Clone(values)
	for i := range out {
		out[i].Tags = slices.Clone(out[i].Tags)
	}

	return out
}
