package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/emailnotify/internal/eventbus"
	"github.com/shaharia-lab/emailnotify/internal/storage"
)

// MockStatusService is a mock implementation of service.StatusService.
type MockStatusService struct {
	mock.Mock
}

//nolint:revive
func (m *MockStatusService) ListRecent(ctx context.Context, limit int) ([]storage.StatusLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.StatusLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockStatusService) History(ctx context.Context, correlationID string) ([]storage.StatusLogEntry, error) {
	args := m.Called(ctx, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.StatusLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockStatusService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

//nolint:revive
func (m *MockStatusService) Listener() eventbus.Listener {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(eventbus.Listener)
}
