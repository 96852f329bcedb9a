package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const originalExport = `{
  "books": [
    {
      "id": 1,
      "title": "Atomic Habits",
      "author": "James Clear",
      "pages": 320,
      "status": "completed",
      "rating": 5,
      "dateAdded": "2024-11-15",
      "tags": ["self-help", "productivity"]
    }
  ],
  "jobs": [
    {"id": 1737331200000, "company": "Meta", "position": "Frontend Developer", "status": "applied", "dateAdded": "2025-01-20T10:30:00.000Z"}
  ],
  "vocab": []
}`

func TestDecodeOriginalJSON(t *testing.T) {
	t.Parallel()

	snap, err := Decode(strings.NewReader(originalExport), FormatJSON)
	require.NoError(t, err)

	require.Len(t, snap.Books, 1)
	assert.Equal(t, domain.Book{
		ID: 1, Title: "Atomic Habits", Author: "James Clear", Pages: 320,
		Status: domain.BookCompleted, Rating: 5,
		DateAdded: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
		Tags:      []string{"self-help", "productivity"},
	}, snap.Books[0])
	require.Len(t, snap.Jobs, 1)
	assert.Equal(t, time.Date(2025, 1, 20, 10, 30, 0, 0, time.UTC), snap.Jobs[0].DateAdded)
	assert.Empty(t, snap.Vocab)
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		format  Format
		wantErr string
	}{
		{name: "missing jobs", body: `{"books": [], "vocab": []}`, format: FormatJSON, wantErr: "missing jobs"},
		{name: "missing everything", body: `{}`, format: FormatJSON, wantErr: "missing books, jobs, vocab"},
		{name: "not json", body: `{"books": [`, format: FormatJSON, wantErr: "parse json"},
		{name: "bad date", body: `{"books": [{"id": 1, "title": "a", "author": "b", "status": "reading", "dateAdded": "yesterday"}], "jobs": [], "vocab": []}`, format: FormatJSON, wantErr: "parse date"},
		{name: "duplicate ids", body: `{"books": [], "jobs": [], "vocab": [{"id": 3, "word": "a", "trans": "b", "lang": "c", "mastery": 1}, {"id": 3, "word": "d", "trans": "e", "lang": "f", "mastery": 2}]}`, format: FormatJSON, wantErr: "duplicate id 3 in vocab"},
		{name: "invalid status", body: `{"books": [{"id": 1, "title": "a", "author": "b", "status": "lost"}], "jobs": [], "vocab": []}`, format: FormatJSON, wantErr: "status must be one of"},
		{name: "yaml missing vocab", body: "books: []\njobs: []\n", format: FormatYAML, wantErr: "missing vocab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(strings.NewReader(tt.body), tt.format)
			require.ErrorIs(t, err, domain.ErrInvalidDocument)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeRefusesCSV(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("kind,id\n"), FormatCSV)

	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEncodeDecodeSample(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, domain.SampleSnapshot(), format))

			snap, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, domain.SampleSnapshot(), snap)
		})
	}
}

func TestEncodeJSONUsesOriginalFieldNames(t *testing.T) {
	t.Parallel()
	snap := domain.Snapshot{Vocab: []domain.Word{{ID: 4, Word: "Hablar", Translation: "To speak", Language: "Spanish", Mastery: 90, DateAdded: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)}}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap, FormatJSON))

	assert.Equal(t, `{
  "books": [],
  "jobs": [],
  "vocab": [
    {
      "id": 4,
      "word": "Hablar",
      "trans": "To speak",
      "lang": "Spanish",
      "mastery": 90,
      "dateAdded": "2024-12-01"
    }
  ]
}
`, buf.String())
}

func TestEncodeCSV(t *testing.T) {
	t.Parallel()
	snap := domain.SampleSnapshot()
	snap.Books = snap.Books[:1]
	snap.Jobs = snap.Jobs[:1]
	snap.Vocab = snap.Vocab[:1]

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap, FormatCSV))

	assert.Equal(t, strings.Join([]string{
		"kind,id,title,author,pages,status,rating,company,position,word,translation,language,mastery,date_added,tags",
		"reading,1,Atomic Habits,James Clear,320,completed,5,,,,,,,2024-11-15,self-help;productivity",
		"job,1,,,,interview,,Google,Software Engineer,,,,,2025-01-05,tech",
		"vocabulary,1,,,,,,,,Hablar,To speak,Spanish,90,2024-12-01,verbs",
		"",
	}, "\n"), buf.String())
}

func TestParseFormatAndFileName(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, FormatCSV, FormatFromPath("/tmp/out.csv"))
	assert.Equal(t, FormatJSON, FormatFromPath("/tmp/out"))
	assert.Equal(t, "growth-dashboard-2025-01-31.yaml", DefaultFileName(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC), FormatYAML))
}

func TestDateForms(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04", d.String())

	d, err = ParseDate("2025-03-04T08:15:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04T06:15:00Z", d.String())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestPayloadConvertsDomainValues(t *testing.T) {
	t.Parallel()
	snap := domain.SampleSnapshot()

	assert.IsType(t, Document{}, Payload(snap))
	assert.IsType(t, []WordRecord{}, Payload(snap.Vocab))
	assert.IsType(t, JobRecord{}, Payload(snap.Jobs[0]))
	assert.Equal(t, "raw", Payload("raw"))
}

func TestMarshalItemRoundTrip(t *testing.T) {
	t.Parallel()

	for _, item := range domain.SampleSnapshot().AllItems() {
		data, err := MarshalItem(item)
		require.NoError(t, err)

		got, err := UnmarshalItem(item.Kind(), data)
		require.NoError(t, err)
		assert.Equal(t, item, got)
	}

	_, err := MarshalItem(nil)
	require.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = UnmarshalItem(domain.Kind("dash"), []byte("{}"))
	require.ErrorIs(t, err, domain.ErrUnknownKind)
}
