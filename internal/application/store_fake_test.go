package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/growth-dashboard/internal/domain"
)

type memStore struct {
	mu      sync.Mutex
	records map[domain.Key]domain.Item
	order   []domain.Key
	calls   []string
	failOn  map[domain.ChangeOp]error
	block   chan struct{}
}

func newMemStore(seed ...domain.Item) *memStore {
	s := &memStore{records: make(map[domain.Key]domain.Item), failOn: make(map[domain.ChangeOp]error)}
	for _, item := range seed {
		s.records[item.Key()] = item
		s.order = append(s.order, item.Key())
	}
	return s
}

func (s *memStore) wait() {
	if s.block != nil {
		<-s.block
	}
}

func (s *memStore) List(_ context.Context, kind domain.Kind) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.Item
	for _, key := range s.order {
		if item, ok := s.records[key]; ok && key.Kind == kind {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *memStore) Insert(_ context.Context, item domain.Item) (domain.Item, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "insert "+item.Key().String())
	if err := s.failOn[domain.ChangeInsert]; err != nil {
		return nil, err
	}
	if _, ok := s.records[item.Key()]; !ok {
		s.order = append(s.order, item.Key())
	}
	s.records[item.Key()] = item
	return item, nil
}

func (s *memStore) Update(_ context.Context, item domain.Item) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "update "+item.Key().String())
	if err := s.failOn[domain.ChangeUpdate]; err != nil {
		return err
	}
	if _, ok := s.records[item.Key()]; !ok {
		return domain.ErrRecordNotFound
	}
	s.records[item.Key()] = item
	return nil
}

func (s *memStore) Delete(_ context.Context, key domain.Key) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "delete "+key.String())
	if err := s.failOn[domain.ChangeDelete]; err != nil {
		return err
	}
	if _, ok := s.records[key]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(s.records, key)
	return nil
}

func (s *memStore) has(key domain.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	return ok
}

func (s *memStore) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
