// Package codec reads and writes the dashboard document in JSON, YAML and
// CSV.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// FormatFromPath picks a format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}

	return format
}

func (f Format) Extension() string {
	return string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// DefaultFileName is the export file name for the day of now.
func DefaultFileName(now time.Time, format Format) string {
	return fmt.Sprintf("growth-dashboard-%s.%s", now.Format(dayLayout), format.Extension())
}

// Decode reads a full document. Every one of books, jobs and vocab must be
// present, ids must be unique per collection and every item must validate.
// All failures wrap domain.ErrInvalidDocument.
func Decode(r io.Reader, format Format) (domain.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read document: %w", err)
	}

	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: parse json: %w", domain.ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: parse yaml: %w", domain.ErrInvalidDocument, err)
		}
	default:
		return domain.Snapshot{}, fmt.Errorf("%w: cannot import %s", ErrUnsupportedFormat, format)
	}

	if missing := doc.missing(); len(missing) > 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: missing %s", domain.ErrInvalidDocument, strings.Join(missing, ", "))
	}

	snap := doc.Snapshot()
	if err := domain.ValidateSnapshot(snap); err != nil {
		return domain.Snapshot{}, err
	}

	return snap, nil
}

// Encode writes snap in format. JSON uses two-space indentation.
func Encode(w io.Writer, snap domain.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(FromSnapshot(snap), "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		return nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(FromSnapshot(snap)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write yaml: %w", err)
		}
		return nil
	case FormatCSV:
		return encodeCSV(w, snap)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (d Document) missing() []string {
	var missing []string
	if d.Books == nil {
		missing = append(missing, "books")
	}
	if d.Jobs == nil {
		missing = append(missing, "jobs")
	}
	if d.Vocab == nil {
		missing = append(missing, "vocab")
	}

	return missing
}
