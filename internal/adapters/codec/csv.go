package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bnema/growth-dashboard/internal/domain"
)

var csvHeader = []string{
	"kind", "id", "title", "author", "pages", "status", "rating",
	"company", "position", "word", "translation", "language", "mastery",
	"date_added", "tags",
}

// encodeCSV flattens all collections into one table with a kind column,
// books first, then jobs, then vocab.
func encodeCSV(w io.Writer, snap domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, b := range snap.Books {
		row := csvRow(domain.KindReading, b.ID, Date{Time: b.DateAdded}, b.Tags)
		row[2], row[3] = b.Title, b.Author
		row[4] = strconv.Itoa(b.Pages)
		row[5] = string(b.Status)
		row[6] = strconv.Itoa(b.Rating)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	for _, j := range snap.Jobs {
		row := csvRow(domain.KindJob, j.ID, Date{Time: j.DateAdded}, j.Tags)
		row[5] = string(j.Status)
		row[7], row[8] = j.Company, j.Position
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	for _, v := range snap.Vocab {
		row := csvRow(domain.KindVocabulary, v.ID, Date{Time: v.DateAdded}, v.Tags)
		row[9], row[10], row[11] = v.Word, v.Translation, v.Language
		row[12] = strconv.Itoa(v.Mastery)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

func csvRow(kind domain.Kind, id domain.ItemID, added Date, tags []string) []string {
	row := make([]string, len(csvHeader))
	row[0] = string(kind)
	row[1] = strconv.FormatInt(int64(id), 10)
	row[13] = added.String()
	row[14] = strings.Join(tags, ";")

	return row
}
