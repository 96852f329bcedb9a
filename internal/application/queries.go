package application

import (
	"math"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
)

const DefaultMonthlyWindow = 6

const highMasteryThreshold = 75

// Stats is the progress summary shown on the overview.
type Stats struct {
	BooksCompleted  int     `json:"books_completed"`
	BooksTotal      int     `json:"books_total"`
	BooksProgress   float64 `json:"books_progress"`
	JobsActive      int     `json:"jobs_active"`
	JobsInPipeline  int     `json:"jobs_in_pipeline"`
	JobsTotal       int     `json:"jobs_total"`
	JobsProgress    float64 `json:"jobs_progress"`
	WordsTotal      int     `json:"words_total"`
	AverageMastery  int     `json:"average_mastery"`
	HighMastery     int     `json:"high_mastery_words"`
	HighMasteryRate float64 `json:"high_mastery_progress"`
}

// MonthBucket counts activity for one calendar month.
type MonthBucket struct {
	Month          time.Time `json:"month"`
	BooksCompleted int       `json:"books"`
	JobsAdded      int       `json:"jobs"`
	WordsAdded     int       `json:"words"`
}

func (b MonthBucket) Label() string {
	return b.Month.Format("Jan")
}

// ComputeStats summarises snap. Active jobs are every job not rejected; the
// pipeline is applied plus interview.
func ComputeStats(snap domain.Snapshot) Stats {
	stats := Stats{
		BooksTotal: len(snap.Books),
		JobsTotal:  len(snap.Jobs),
		WordsTotal: len(snap.Vocab),
	}

	for _, b := range snap.Books {
		if b.Status == domain.BookCompleted {
			stats.BooksCompleted++
		}
	}

	for _, j := range snap.Jobs {
		if j.Status != domain.JobRejected {
			stats.JobsActive++
		}
		if j.Status == domain.JobApplied || j.Status == domain.JobInterview {
			stats.JobsInPipeline++
		}
	}

	masterySum := 0
	for _, w := range snap.Vocab {
		masterySum += w.Mastery
		if w.Mastery >= highMasteryThreshold {
			stats.HighMastery++
		}
	}
	if len(snap.Vocab) > 0 {
		stats.AverageMastery = int(math.Round(float64(masterySum) / float64(len(snap.Vocab))))
	}

	stats.BooksProgress = percent(stats.BooksCompleted, stats.BooksTotal)
	stats.JobsProgress = percent(stats.JobsInPipeline, stats.JobsTotal)
	stats.HighMasteryRate = percent(stats.HighMastery, stats.WordsTotal)

	return stats
}

// Monthly buckets activity for the months calendar months ending with the
// month of now, oldest first. Books count only when completed.
func Monthly(snap domain.Snapshot, now time.Time, months int) []MonthBucket {
	if months < 1 {
		months = DefaultMonthlyWindow
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	buckets := make([]MonthBucket, months)
	for i := range buckets {
		buckets[i].Month = first.AddDate(0, i, 0)
	}

	index := func(t time.Time) int {
		t = t.UTC()
		i := (t.Year()-first.Year())*12 + int(t.Month()) - int(first.Month())
		if i < 0 || i >= months {
			return -1
		}
		return i
	}

	for _, b := range snap.Books {
		if b.Status != domain.BookCompleted {
			continue
		}
		if i := index(b.DateAdded); i >= 0 {
			buckets[i].BooksCompleted++
		}
	}
	for _, j := range snap.Jobs {
		if i := index(j.DateAdded); i >= 0 {
			buckets[i].JobsAdded++
		}
	}
	for _, w := range snap.Vocab {
		if i := index(w.DateAdded); i >= 0 {
			buckets[i].WordsAdded++
		}
	}

	return buckets
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total) * 100
}
