// Package view derives the filtered and sorted list shown for one collection.
// It never modifies the snapshot it reads.
package view

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bnema/growth-dashboard/internal/domain"
)

var (
	ErrUnsupportedSortKey = errors.New("unsupported sort key")
	ErrUnsupportedOrder   = errors.New("unsupported sort order")
)

type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

func ParseOrder(raw string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOrder, raw)
	}
}

// Query selects one collection. An empty Text matches everything and an empty
// SortKey keeps stored order.
type Query struct {
	Kind    domain.Kind
	Text    string
	SortKey string
	Order   Order
}

type comparator func(a, b domain.Item) int

var sortKeys = map[domain.Kind][]string{
	domain.KindReading:    {"date", "title", "status", "rating"},
	domain.KindJob:        {"date", "company", "position", "status"},
	domain.KindVocabulary: {"date", "word", "mastery"},
}

// SortKeys lists the keys accepted for kind.
func SortKeys(kind domain.Kind) []string {
	return slices.Clone(sortKeys[kind])
}

// Apply returns the items of q.Kind matching q.Text, ordered by q.SortKey.
func Apply(snap domain.Snapshot, q Query) ([]domain.Item, error) {
	if !q.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, q.Kind)
	}

	var compare comparator
	if q.SortKey != "" {
		var err error
		compare, err = comparatorFor(q.Kind, q.SortKey)
		if err != nil {
			return nil, err
		}
	}

	items := Filter(snap.Items(q.Kind), q.Text)
	if compare == nil {
		return items, nil
	}

	if q.Order == Descending {
		slices.SortStableFunc(items, func(a, b domain.Item) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(items, compare)
	}

	return items, nil
}

// Filter keeps the items whose searchable fields contain text, ignoring case.
// Only the empty string matches everything; whitespace is matched literally.
func Filter(items []domain.Item, text string) []domain.Item {
	needle := strings.ToLower(text)
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if needle == "" || matches(item, needle) {
			out = append(out, item)
		}
	}

	return out
}

func matches(item domain.Item, needle string) bool {
	fields := slices.Clone(item.Labels())
	switch v := item.(type) {
	case domain.Book:
		fields = append(fields, v.Title, v.Author)
	case domain.Job:
		fields = append(fields, v.Company, v.Position)
	case domain.Word:
		fields = append(fields, v.Word, v.Translation, v.Language)
	}

	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	return false
}

func comparatorFor(kind domain.Kind, key string) (comparator, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "date" {
		return func(a, b domain.Item) int { return a.AddedAt().Compare(b.AddedAt()) }, nil
	}

	switch kind {
	case domain.KindReading:
		switch key {
		case "title":
			return byText(func(b domain.Book) string { return b.Title }), nil
		case "status":
			return byText(func(b domain.Book) string { return string(b.Status) }), nil
		case "rating":
			return byNumber(func(b domain.Book) int { return b.Rating }), nil
		}
	case domain.KindJob:
		switch key {
		case "company":
			return byText(func(j domain.Job) string { return j.Company }), nil
		case "position":
			return byText(func(j domain.Job) string { return j.Position }), nil
		case "status":
			return byText(func(j domain.Job) string { return string(j.Status) }), nil
		}
	case domain.KindVocabulary:
		switch key {
		case "word":
			return byText(func(w domain.Word) string { return w.Word }), nil
		case "mastery":
			return byNumber(func(w domain.Word) int { return w.Mastery }), nil
		}
	}

	return nil, fmt.Errorf("%w: %q for %s (want one of %s)", ErrUnsupportedSortKey, key, kind, strings.Join(sortKeys[kind], ", "))
}

func byText[T domain.Item](field func(T) string) comparator {
	return func(a, b domain.Item) int {
		return cmp.Compare(strings.ToLower(field(a.(T))), strings.ToLower(field(b.(T))))
	}
}

func byNumber[T domain.Item](field func(T) int) comparator {
	return func(a, b domain.Item) int {
		return cmp.Compare(field(a.(T)), field(b.(T)))
	}
}
