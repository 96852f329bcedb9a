package domain

import (
	"strings"
	"time"
)

// Item is implemented by the three collection variants. Code that needs the
// concrete fields switches on Kind (or on the concrete type), never on field
// presence.
type Item interface {
	Kind() Kind
	Key() Key
	AddedAt() time.Time
	Labels() []string
}

type BookStatus string

const (
	BookReading   BookStatus = "reading"
	BookCompleted BookStatus = "completed"
	BookWishlist  BookStatus = "wishlist"
)

type JobStatus string

const (
	JobApplied   JobStatus = "applied"
	JobInterview JobStatus = "interview"
	JobOffer     JobStatus = "offer"
	JobRejected  JobStatus = "rejected"
)

type Book struct {
	ID        ItemID
	Title     string     `validate:"notblank"`
	Author    string     `validate:"notblank"`
	Pages     int        `validate:"gte=0"`
	Status    BookStatus `validate:"oneof=reading completed wishlist"`
	Rating    int        `validate:"gte=0,lte=5"`
	DateAdded time.Time
	Tags      []string
}

func (b Book) Kind() Kind         { return KindReading }
func (b Book) Key() Key           { return Key{Kind: KindReading, ID: b.ID} }
func (b Book) AddedAt() time.Time { return b.DateAdded }
func (b Book) Labels() []string   { return b.Tags }

type Job struct {
	ID        ItemID
	Company   string    `validate:"notblank"`
	Position  string    `validate:"notblank"`
	Status    JobStatus `validate:"oneof=applied interview offer rejected"`
	DateAdded time.Time
	Tags      []string
}

func (j Job) Kind() Kind         { return KindJob }
func (j Job) Key() Key           { return Key{Kind: KindJob, ID: j.ID} }
func (j Job) AddedAt() time.Time { return j.DateAdded }
func (j Job) Labels() []string   { return j.Tags }

// Word is a vocabulary entry. Mastery is a percentage.
type Word struct {
	ID          ItemID
	Word        string `validate:"notblank"`
	Translation string `validate:"notblank"`
	Language    string `validate:"notblank"`
	Mastery     int    `validate:"gte=0,lte=100"`
	DateAdded   time.Time
	Tags        []string
}

func (w Word) Kind() Kind         { return KindVocabulary }
func (w Word) Key() Key           { return Key{Kind: KindVocabulary, ID: w.ID} }
func (w Word) AddedAt() time.Time { return w.DateAdded }
func (w Word) Labels() []string   { return w.Tags }

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	result := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// SplitTags parses the comma separated form used by forms and CSV cells.
func SplitTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

// WithID returns a copy of item carrying id.
func WithID(item Item, id ItemID) Item {
	switch v := item.(type) {
	case Book:
		v.ID = id
		return v
	case Job:
		v.ID = id
		return v
	case Word:
		v.ID = id
		return v
	default:
		return item
	}
}

func normalizeItem(item Item, now time.Time) Item {
	switch v := item.(type) {
	case Book:
		if v.DateAdded.IsZero() {
			v.DateAdded = now
		}
		if v.Status == "" {
			v.Status = BookReading
		}
		v.Tags = NormalizeTags(v.Tags)
		return v
	case Job:
		if v.DateAdded.IsZero() {
			v.DateAdded = now
		}
		if v.Status == "" {
			v.Status = JobApplied
		}
		v.Tags = NormalizeTags(v.Tags)
		return v
	case Word:
		if v.DateAdded.IsZero() {
			v.DateAdded = now
		}
		v.Tags = NormalizeTags(v.Tags)
		return v
	default:
		return item
	}
}
