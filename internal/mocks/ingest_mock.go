package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockIngestClient is a mock implementation of the services.IngestClient interface
type MockIngestClient struct {
	mock.Mock
}

func (m *MockIngestClient) CheckStatus(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIngestClient) SendBatch(ctx context.Context, batch any) (int, error) {
	args := m.Called(ctx, batch)
	return args.Int(0), args.Error(1)
}

// MockSink is a mock implementation of the services.Sink interface
type MockSink struct {
	mock.Mock
}

func (m *MockSink) SendBatch(ctx context.Context, batch any) (int, error) {
	args := m.Called(ctx, batch)
	return args.Int(0), args.Error(1)
}
