package mocks

import (
	"context"

	"github.com/bnema/growth-dashboard/internal/ports"
	"github.com/stretchr/testify/mock"
)

// MockInsightGenerator is a testify mock of ports.InsightGenerator.
type MockInsightGenerator struct {
	mock.Mock
}

func NewMockInsightGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockInsightGenerator {
	m := &MockInsightGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockInsightGenerator) Generate(ctx context.Context, req ports.InsightRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
