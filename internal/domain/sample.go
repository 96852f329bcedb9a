package domain

import "time"

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// SampleSnapshot is the starter data `gd init` seeds an empty store with.
func SampleSnapshot() Snapshot {
	return Snapshot{
		Books: []Book{
			{ID: 1, Title: "Atomic Habits", Author: "James Clear", Pages: 320, Status: BookCompleted, Rating: 5, DateAdded: day(2024, time.November, 15), Tags: []string{"self-help", "productivity"}},
			{ID: 2, Title: "Deep Work", Author: "Cal Newport", Pages: 296, Status: BookReading, Rating: 4, DateAdded: day(2025, time.January, 10), Tags: []string{"productivity"}},
		},
		Jobs: []Job{
			{ID: 1, Company: "Google", Position: "Software Engineer", Status: JobInterview, DateAdded: day(2025, time.January, 5), Tags: []string{"tech"}},
			{ID: 2, Company: "Meta", Position: "Frontend Developer", Status: JobApplied, DateAdded: day(2025, time.January, 20), Tags: []string{"tech"}},
		},
		Vocab: []Word{
			{ID: 1, Word: "Hablar", Translation: "To speak", Language: "Spanish", Mastery: 90, DateAdded: day(2024, time.December, 1), Tags: []string{"verbs"}},
			{ID: 2, Word: "Comer", Translation: "To eat", Language: "Spanish", Mastery: 75, DateAdded: day(2024, time.December, 15), Tags: []string{"verbs"}},
		},
	}
}
