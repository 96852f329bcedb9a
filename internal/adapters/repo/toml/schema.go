package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Books   []bookSchema `toml:"books"`
	Jobs    []jobSchema  `toml:"jobs"`
	Vocab   []wordSchema `toml:"vocab"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported records schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type bookSchema struct {
	ID        int64    `toml:"id"`
	Title     string   `toml:"title"`
	Author    string   `toml:"author"`
	Pages     int      `toml:"pages"`
	Status    string   `toml:"status"`
	Rating    int      `toml:"rating,omitempty"`
	DateAdded string   `toml:"date_added"`
	Tags      []string `toml:"tags,omitempty"`
}

type jobSchema struct {
	ID        int64    `toml:"id"`
	Company   string   `toml:"company"`
	Position  string   `toml:"position"`
	Status    string   `toml:"status"`
	DateAdded string   `toml:"date_added"`
	Tags      []string `toml:"tags,omitempty"`
}

type wordSchema struct {
	ID          int64    `toml:"id"`
	Word        string   `toml:"word"`
	Translation string   `toml:"translation"`
	Language    string   `toml:"language"`
	Mastery     int      `toml:"mastery"`
	DateAdded   string   `toml:"date_added"`
	Tags        []string `toml:"tags,omitempty"`
}
