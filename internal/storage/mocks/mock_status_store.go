package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/emailnotify/internal/storage"
)

// MockStatusStore is a mock implementation of storage.StatusStore.
type MockStatusStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockStatusStore) LogStatus(ctx context.Context, entry storage.StatusLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

//nolint:revive
func (m *MockStatusStore) ListStatuses(ctx context.Context, limit int) ([]storage.StatusLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.StatusLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockStatusStore) ListByCorrelation(ctx context.Context, correlationID string) ([]storage.StatusLogEntry, error) {
	args := m.Called(ctx, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.StatusLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockStatusStore) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}
