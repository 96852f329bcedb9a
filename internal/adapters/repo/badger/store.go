// Package badger is a RecordStore kept in an embedded BadgerDB. Records live
// under records/<collection>/<big-endian id> as JSON documents.
package badger

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bnema/growth-dashboard/internal/adapters/codec"
	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/ports"
	"github.com/dgraph-io/badger/v4"
)

const (
	recordsPrefix     = "records/"
	defaultGCInterval = 5 * time.Minute
	gcDiscardRatio    = 0.5
)

type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration
	Logger     *slog.Logger
}

func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true, GCInterval: defaultGCInterval}
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type Store struct {
	db     *badger.DB
	logger *slog.Logger

	stopGC    chan struct{}
	gcDone    chan struct{}
	closeOnce sync.Once
}

var _ ports.RecordStore = (*Store)(nil)

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens the database and starts value log GC when configured. Call
// Close when done.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		logger = slog.Default()
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	s := &Store{db: db, logger: logger.With("component", "badger")}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.gcDone = make(chan struct{})
		go s.runGC(cfg.GCInterval)
	}

	return s, nil
}

func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.stopGC != nil {
			close(s.stopGC)
			<-s.gcDone
		}
		err = s.db.Close()
	})

	return err
}

func (s *Store) List(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	var items []domain.Item
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := collectionPrefix(kind)
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 64, Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				item, err := codec.UnmarshalItem(kind, val)
				if err != nil {
					return err
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Collection(), err)
	}

	return items, nil
}

func (s *Store) Insert(ctx context.Context, item domain.Item) (domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("insert: %w: missing item", domain.ErrInvalidItem)
	}

	stored := item
	err := s.db.Update(func(txn *badger.Txn) error {
		if stored.Key().ID == 0 {
			last, err := lastID(txn, stored.Kind())
			if err != nil {
				return err
			}
			stored = domain.WithID(stored, last+1)
		}

		key := recordKey(stored.Key())
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("record %s already exists", stored.Key())
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return s.put(txn, key, stored)
	})
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", stored.Key(), err)
	}

	return stored, nil
}

func (s *Store) Update(ctx context.Context, item domain.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("update: %w: missing item", domain.ErrInvalidItem)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(item.Key())
		if err := exists(txn, key); err != nil {
			return err
		}
		return s.put(txn, key, item)
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", item.Key(), err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key domain.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		raw := recordKey(key)
		if err := exists(txn, raw); err != nil {
			return err
		}
		return txn.Delete(raw)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func (s *Store) put(txn *badger.Txn, key []byte, item domain.Item) error {
	data, err := codec.MarshalItem(item)
	if err != nil {
		return err
	}

	return txn.Set(key, data)
}

func exists(txn *badger.Txn, key []byte) error {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrRecordNotFound
	}

	return err
}

// lastID returns the highest id stored for kind. Keys sort by id because
// ids are encoded big-endian.
func lastID(txn *badger.Txn, kind domain.Kind) (domain.ItemID, error) {
	prefix := collectionPrefix(kind)
	it := txn.NewIterator(badger.IteratorOptions{Reverse: true, Prefix: prefix})
	defer it.Close()

	it.Seek(append(bytes.Clone(prefix), 0xff))
	if !it.Valid() {
		return 0, nil
	}

	return decodeID(it.Item().Key()[len(prefix):])
}

func collectionPrefix(kind domain.Kind) []byte {
	return []byte(recordsPrefix + kind.Collection() + "/")
}

func recordKey(key domain.Key) []byte {
	prefix := collectionPrefix(key.Kind)
	return binary.BigEndian.AppendUint64(prefix, uint64(key.ID))
}

func decodeID(raw []byte) (domain.ItemID, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("malformed record key suffix of %d bytes", len(raw))
	}

	return domain.ItemID(binary.BigEndian.Uint64(raw)), nil
}

func (s *Store) runGC(interval time.Duration) {
	defer close(s.gcDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(gcDiscardRatio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("value log gc failed", "err", err)
			}
		}
	}
}
