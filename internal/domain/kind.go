package domain

import (
	"fmt"
	"strings"
)

// Kind tags which collection an item belongs to.
type Kind string

const (
	KindReading    Kind = "reading"
	KindJob        Kind = "job"
	KindVocabulary Kind = "vocabulary"
)

// Kinds lists every collection kind in snapshot order.
func Kinds() []Kind {
	return []Kind{KindReading, KindJob, KindVocabulary}
}

func (k Kind) Valid() bool {
	switch k {
	case KindReading, KindJob, KindVocabulary:
		return true
	default:
		return false
	}
}

// Collection returns the document field name used for the kind.
func (k Kind) Collection() string {
	switch k {
	case KindReading:
		return "books"
	case KindJob:
		return "jobs"
	case KindVocabulary:
		return "vocab"
	default:
		return string(k)
	}
}

// ParseKind accepts canonical kind names and the tab/collection aliases the
// dashboard exposes (books, career, words, ...).
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "reading", "book", "books":
		return KindReading, nil
	case "job", "jobs", "career":
		return KindJob, nil
	case "vocabulary", "vocab", "word", "words", "language":
		return KindVocabulary, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

type ItemID int64

// Key identifies one item across all collections.
type Key struct {
	Kind Kind   `json:"kind"`
	ID   ItemID `json:"id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Kind, k.ID)
}
