package mocks

import (
	"context"

	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockRecordStore is a testify mock of ports.RecordStore.
type MockRecordStore struct {
	mock.Mock
}

// NewMockRecordStore registers expectation checks on test cleanup.
func NewMockRecordStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRecordStore {
	m := &MockRecordStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRecordStore) List(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	args := m.Called(ctx, kind)
	items, _ := args.Get(0).([]domain.Item)
	return items, args.Error(1)
}

func (m *MockRecordStore) Insert(ctx context.Context, item domain.Item) (domain.Item, error) {
	args := m.Called(ctx, item)
	stored, _ := args.Get(0).(domain.Item)
	return stored, args.Error(1)
}

func (m *MockRecordStore) Update(ctx context.Context, item domain.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockRecordStore) Delete(ctx context.Context, key domain.Key) error {
	return m.Called(ctx, key).Error(0)
}
