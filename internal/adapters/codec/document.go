package codec

import "github.com/bnema/growth-dashboard/internal/domain"

// Document is the import/export shape. The collections are pointers so a
// missing field can be told apart from an empty one.
type Document struct {
	Books *[]BookRecord `json:"books" yaml:"books"`
	Jobs  *[]JobRecord  `json:"jobs" yaml:"jobs"`
	Vocab *[]WordRecord `json:"vocab" yaml:"vocab"`
}

type BookRecord struct {
	ID        int64    `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Author    string   `json:"author" yaml:"author"`
	Pages     int      `json:"pages" yaml:"pages"`
	Status    string   `json:"status" yaml:"status"`
	Rating    int      `json:"rating,omitempty" yaml:"rating,omitempty"`
	DateAdded Date     `json:"dateAdded" yaml:"dateAdded"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

type JobRecord struct {
	ID        int64    `json:"id" yaml:"id"`
	Company   string   `json:"company" yaml:"company"`
	Position  string   `json:"position" yaml:"position"`
	Status    string   `json:"status" yaml:"status"`
	DateAdded Date     `json:"dateAdded" yaml:"dateAdded"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

type WordRecord struct {
	ID          int64    `json:"id" yaml:"id"`
	Word        string   `json:"word" yaml:"word"`
	Translation string   `json:"trans" yaml:"trans"`
	Language    string   `json:"lang" yaml:"lang"`
	Mastery     int      `json:"mastery" yaml:"mastery"`
	DateAdded   Date     `json:"dateAdded" yaml:"dateAdded"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// FromSnapshot converts snap into a Document with all three collections
// present.
func FromSnapshot(snap domain.Snapshot) Document {
	books := BookRecords(snap.Books)
	jobs := JobRecords(snap.Jobs)
	vocab := WordRecords(snap.Vocab)

	return Document{Books: &books, Jobs: &jobs, Vocab: &vocab}
}

// Snapshot converts the document back. Missing collections become empty.
func (d Document) Snapshot() domain.Snapshot {
	var snap domain.Snapshot
	if d.Books != nil {
		for _, r := range *d.Books {
			snap.Books = append(snap.Books, r.toDomain())
		}
	}
	if d.Jobs != nil {
		for _, r := range *d.Jobs {
			snap.Jobs = append(snap.Jobs, r.toDomain())
		}
	}
	if d.Vocab != nil {
		for _, r := range *d.Vocab {
			snap.Vocab = append(snap.Vocab, r.toDomain())
		}
	}

	return snap
}

func BookRecords(books []domain.Book) []BookRecord {
	out := make([]BookRecord, 0, len(books))
	for _, b := range books {
		out = append(out, BookRecord{
			ID:        int64(b.ID),
			Title:     b.Title,
			Author:    b.Author,
			Pages:     b.Pages,
			Status:    string(b.Status),
			Rating:    b.Rating,
			DateAdded: Date{Time: b.DateAdded},
			Tags:      b.Tags,
		})
	}

	return out
}

func JobRecords(jobs []domain.Job) []JobRecord {
	out := make([]JobRecord, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobRecord{
			ID:        int64(j.ID),
			Company:   j.Company,
			Position:  j.Position,
			Status:    string(j.Status),
			DateAdded: Date{Time: j.DateAdded},
			Tags:      j.Tags,
		})
	}

	return out
}

func WordRecords(words []domain.Word) []WordRecord {
	out := make([]WordRecord, 0, len(words))
	for _, w := range words {
		out = append(out, WordRecord{
			ID:          int64(w.ID),
			Word:        w.Word,
			Translation: w.Translation,
			Language:    w.Language,
			Mastery:     w.Mastery,
			DateAdded:   Date{Time: w.DateAdded},
			Tags:        w.Tags,
		})
	}

	return out
}

func (r BookRecord) toDomain() domain.Book {
	return domain.Book{
		ID:        domain.ItemID(r.ID),
		Title:     r.Title,
		Author:    r.Author,
		Pages:     r.Pages,
		Status:    domain.BookStatus(r.Status),
		Rating:    r.Rating,
		DateAdded: r.DateAdded.Time,
		Tags:      domain.NormalizeTags(r.Tags),
	}
}

func (r JobRecord) toDomain() domain.Job {
	return domain.Job{
		ID:        domain.ItemID(r.ID),
		Company:   r.Company,
		Position:  r.Position,
		Status:    domain.JobStatus(r.Status),
		DateAdded: r.DateAdded.Time,
		Tags:      domain.NormalizeTags(r.Tags),
	}
}

func (r WordRecord) toDomain() domain.Word {
	return domain.Word{
		ID:          domain.ItemID(r.ID),
		Word:        r.Word,
		Translation: r.Translation,
		Language:    r.Language,
		Mastery:     r.Mastery,
		DateAdded:   r.DateAdded.Time,
		Tags:        domain.NormalizeTags(r.Tags),
	}
}

// ItemRecord converts a single item to its record form, used when one item
// is encoded on its own.
func ItemRecord(item domain.Item) any {
	switch v := item.(type) {
	case domain.Book:
		return BookRecords([]domain.Book{v})[0]
	case domain.Job:
		return JobRecords([]domain.Job{v})[0]
	case domain.Word:
		return WordRecords([]domain.Word{v})[0]
	default:
		return nil
	}
}

// Payload converts domain values into their record form for JSON encoding.
// Values of other types are returned unchanged.
func Payload(v any) any {
	switch p := v.(type) {
	case domain.Snapshot:
		return FromSnapshot(p)
	case []domain.Book:
		return BookRecords(p)
	case []domain.Job:
		return JobRecords(p)
	case []domain.Word:
		return WordRecords(p)
	case domain.Item:
		return ItemRecord(p)
	default:
		return v
	}
}
