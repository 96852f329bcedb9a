package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	StorePathKey      = "store.path"
	recordsFileMode   = 0o600
	recordsDirMode    = 0o700
	recordsConfigDir  = ".growth-dashboard"
	recordsConfigFile = "records.toml"
	tempFilePattern   = ".records-*.toml.tmp"
)

// Repository is a RecordStore backed by a single TOML file. Every call reads
// the file; writes replace it atomically.
type Repository struct {
	recordsPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.RecordStore = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetDefault(StorePathKey, filepath.Join(homeDir, recordsConfigDir, recordsConfigFile))

	recordsPath := cfg.GetString(StorePathKey)
	if recordsPath == "" {
		return nil, errors.New("records path is empty")
	}
	recordsPath, err = normalizeRecordsPath(recordsPath)
	if err != nil {
		return nil, err
	}

	return &Repository{recordsPath: recordsPath, mu: lockForPath(recordsPath)}, nil
}

func (r *Repository) Path() string {
	return r.recordsPath
}

func (r *Repository) List(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	return fromSchema(file).Items(kind), nil
}

func (r *Repository) Insert(ctx context.Context, item domain.Item) (domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stored domain.Item
	err := r.mutate(ctx, func(snap *domain.Snapshot) error {
		if item.Key().ID == 0 {
			item = domain.WithID(item, highestID(*snap, item.Kind())+1)
		}
		if _, exists := snap.Find(item.Key()); exists {
			return fmt.Errorf("insert %s: record already exists", item.Key())
		}

		*snap = domain.SnapshotFromItems(append(snap.AllItems(), item))
		stored = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (r *Repository) Update(ctx context.Context, item domain.Item) error {
	return r.mutate(ctx, func(snap *domain.Snapshot) error {
		next, ok := snap.Update(item)
		if !ok {
			return fmt.Errorf("update %s: %w", item.Key(), domain.ErrRecordNotFound)
		}
		*snap = next
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, key domain.Key) error {
	return r.mutate(ctx, func(snap *domain.Snapshot) error {
		next, ok := snap.Delete(key)
		if !ok {
			return fmt.Errorf("delete %s: %w", key, domain.ErrRecordNotFound)
		}
		*snap = next
		return nil
	})
}

func (r *Repository) mutate(ctx context.Context, apply func(*domain.Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	snap := fromSchema(file)
	if err := apply(&snap); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(toSchema(snap))
}

func highestID(snap domain.Snapshot, kind domain.Kind) domain.ItemID {
	var highest domain.ItemID
	for _, item := range snap.Items(kind) {
		highest = max(highest, item.Key().ID)
	}

	return highest
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.recordsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read records file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode records file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeRecordsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve records path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.recordsPath), recordsDirMode); err != nil {
		return fmt.Errorf("create records directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode records file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.recordsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp records file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp records file: %w", err)
	}

	if err := tempFile.Chmod(recordsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp records file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp records file: %w", err)
	}

	if err := os.Rename(tempName, r.recordsPath); err != nil {
		return fmt.Errorf("replace records file: %w", err)
	}

	cleanup = false

	return nil
}

func toSchema(snap domain.Snapshot) fileSchema {
	file := fileSchema{Version: currentSchemaVersion}
	for _, b := range snap.Books {
		file.Books = append(file.Books, bookSchema{
			ID:        int64(b.ID),
			Title:     b.Title,
			Author:    b.Author,
			Pages:     b.Pages,
			Status:    string(b.Status),
			Rating:    b.Rating,
			DateAdded: formatTime(b.DateAdded),
			Tags:      slices.Clone(b.Tags),
		})
	}
	for _, j := range snap.Jobs {
		file.Jobs = append(file.Jobs, jobSchema{
			ID:        int64(j.ID),
			Company:   j.Company,
			Position:  j.Position,
			Status:    string(j.Status),
			DateAdded: formatTime(j.DateAdded),
			Tags:      slices.Clone(j.Tags),
		})
	}
	for _, w := range snap.Vocab {
		file.Vocab = append(file.Vocab, wordSchema{
			ID:          int64(w.ID),
			Word:        w.Word,
			Translation: w.Translation,
			Language:    w.Language,
			Mastery:     w.Mastery,
			DateAdded:   formatTime(w.DateAdded),
			Tags:        slices.Clone(w.Tags),
		})
	}

	return file
}

func fromSchema(file fileSchema) domain.Snapshot {
	var snap domain.Snapshot
	for _, b := range file.Books {
		snap.Books = append(snap.Books, domain.Book{
			ID:        domain.ItemID(b.ID),
			Title:     b.Title,
			Author:    b.Author,
			Pages:     b.Pages,
			Status:    domain.BookStatus(b.Status),
			Rating:    b.Rating,
			DateAdded: parseTime(b.DateAdded),
			Tags:      domain.NormalizeTags(b.Tags),
		})
	}
	for _, j := range file.Jobs {
		snap.Jobs = append(snap.Jobs, domain.Job{
			ID:        domain.ItemID(j.ID),
			Company:   j.Company,
			Position:  j.Position,
			Status:    domain.JobStatus(j.Status),
			DateAdded: parseTime(j.DateAdded),
			Tags:      domain.NormalizeTags(j.Tags),
		})
	}
	for _, w := range file.Vocab {
		snap.Vocab = append(snap.Vocab, domain.Word{
			ID:          domain.ItemID(w.ID),
			Word:        w.Word,
			Translation: w.Translation,
			Language:    w.Language,
			Mastery:     w.Mastery,
			DateAdded:   parseTime(w.DateAdded),
			Tags:        domain.NormalizeTags(w.Tags),
		})
	}

	return snap
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed.UTC()
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
