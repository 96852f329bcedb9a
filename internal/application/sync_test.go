package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resultLog struct {
	mu      sync.Mutex
	results []SyncResult
}

func (l *resultLog) add(r SyncResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, r)
}

func (l *resultLog) all() []SyncResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]SyncResult(nil), l.results...)
}

func book(id domain.ItemID, title string) domain.Book {
	return domain.Book{ID: id, Title: title, Author: "a", Status: domain.BookReading}
}

func TestSyncerAppliesChangesInOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(book(1, "old"))
	board := NewNoticeBoard(10, nil)
	s := NewSyncer(store, board)
	t.Cleanup(func() { _ = s.Close() })

	tokens := s.Enqueue([]domain.Change{
		{Op: domain.ChangeInsert, Key: book(2, "new").Key(), Item: book(2, "new")},
		{Op: domain.ChangeUpdate, Key: book(1, "edited").Key(), Item: book(1, "edited")},
		{Op: domain.ChangeDelete, Key: book(2, "new").Key(), Item: book(2, "new")},
	})
	require.Len(t, tokens, 3)
	assert.NotEqual(t, tokens[0], tokens[1])
	require.NoError(t, s.Flush(ctx))

	assert.Equal(t, []string{"insert reading-2", "update reading-1", "delete reading-2"}, store.callLog())
	assert.False(t, store.has(domain.Key{Kind: domain.KindReading, ID: 2}))

	notices := board.Drain()
	require.Len(t, notices, 3)
	for _, n := range notices {
		assert.Equal(t, NoticeSuccess, n.Level)
		assert.NotEmpty(t, n.Token)
	}
}

func TestSyncerReportsFailuresWithoutRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	store.failOn[domain.ChangeInsert] = errors.New("connection refused")
	board := NewNoticeBoard(10, nil)
	s := NewSyncer(store, board)
	t.Cleanup(func() { _ = s.Close() })

	s.Enqueue([]domain.Change{{Op: domain.ChangeInsert, Key: book(5, "x").Key(), Item: book(5, "x")}})
	require.NoError(t, s.Flush(ctx))

	notices := board.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Level)
	assert.Contains(t, notices[0].Message, "connection refused")
	require.NotNil(t, notices[0].Key)
	assert.Equal(t, domain.ItemID(5), notices[0].Key.ID)
	assert.Len(t, store.callLog(), 1)
}

func TestSyncerUpdateFallsBackToInsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	s := NewSyncer(store, nil)
	t.Cleanup(func() { _ = s.Close() })

	s.Enqueue([]domain.Change{{Op: domain.ChangeUpdate, Key: book(3, "x").Key(), Item: book(3, "x")}})
	require.NoError(t, s.Flush(ctx))

	assert.Equal(t, []string{"update reading-3", "insert reading-3"}, store.callLog())
	assert.True(t, store.has(domain.Key{Kind: domain.KindReading, ID: 3}))
}

func TestSyncerDeleteOfMissingRecordSucceeds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := &resultLog{}
	s := NewSyncer(newMemStore(), nil, WithSyncResultHook(log.add))
	t.Cleanup(func() { _ = s.Close() })

	s.Enqueue([]domain.Change{{Op: domain.ChangeDelete, Key: book(3, "x").Key(), Item: book(3, "x")}})
	require.NoError(t, s.Flush(ctx))

	results := log.all()
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestSyncerMarksSupersededResultsStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(book(1, "v0"))
	store.block = make(chan struct{})
	board := NewNoticeBoard(10, nil)
	log := &resultLog{}
	s := NewSyncer(store, board, WithSyncResultHook(log.add))
	t.Cleanup(func() { _ = s.Close() })

	first := s.Enqueue([]domain.Change{{Op: domain.ChangeUpdate, Key: book(1, "v1").Key(), Item: book(1, "v1")}})
	second := s.Enqueue([]domain.Change{{Op: domain.ChangeUpdate, Key: book(1, "v2").Key(), Item: book(1, "v2")}})
	close(store.block)
	require.NoError(t, s.Flush(ctx))

	results := log.all()
	require.Len(t, results, 2)
	assert.Equal(t, first[0], results[0].Token)
	assert.True(t, results[0].Stale)
	assert.Equal(t, second[0], results[1].Token)
	assert.False(t, results[1].Stale)

	notices := board.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, second[0], notices[0].Token)
}

func TestSyncerFlushHonoursContext(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	store.block = make(chan struct{})
	s := NewSyncer(store, nil)
	t.Cleanup(func() {
		close(store.block)
		_ = s.Close()
	})

	s.Enqueue([]domain.Change{{Op: domain.ChangeInsert, Key: book(1, "x").Key(), Item: book(1, "x")}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Flush(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSyncerDropsChangesAfterClose(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	s := NewSyncer(store, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	tokens := s.Enqueue([]domain.Change{{Op: domain.ChangeInsert, Key: book(1, "x").Key(), Item: book(1, "x")}})

	assert.Nil(t, tokens)
	require.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, store.callLog())
}
