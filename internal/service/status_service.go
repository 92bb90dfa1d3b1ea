package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shaharia-lab/emailnotify/internal/eventbus"
	"github.com/shaharia-lab/emailnotify/internal/notification"
	"github.com/shaharia-lab/emailnotify/internal/storage"
)

// MaxListLimit caps how many status entries a single listing may return.
const MaxListLimit = 500

// StatusService exposes the status history of processed requests.
type StatusService interface {
	// ListRecent returns the most recent status entries across all requests.
	ListRecent(ctx context.Context, limit int) ([]storage.StatusLogEntry, error)
	// History returns every status entry recorded for one request.
	History(ctx context.Context, correlationID string) ([]storage.StatusLogEntry, error)
	// Prune removes entries older than retention.
	Prune(ctx context.Context, retention time.Duration) (int64, error)
	// Listener returns an eventbus listener that records lifecycle events.
	Listener() eventbus.Listener
}

type statusServiceImpl struct {
	store  storage.StatusStore
	logger *slog.Logger
	now    func() time.Time
}

// NewStatusService creates a new StatusService.
func NewStatusService(store storage.StatusStore, logger *slog.Logger) StatusService {
	return &statusServiceImpl{store: store, logger: logger, now: time.Now}
}

func (s *statusServiceImpl) ListRecent(ctx context.Context, limit int) ([]storage.StatusLogEntry, error) {
	if limit < 0 || limit > MaxListLimit {
		return nil, &ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 0 and %d", MaxListLimit),
		}
	}
	return s.store.ListStatuses(ctx, limit)
}

func (s *statusServiceImpl) History(ctx context.Context, correlationID string) ([]storage.StatusLogEntry, error) {
	if correlationID == "" {
		return nil, &ValidationError{Field: "correlation_id", Message: "is required"}
	}
	entries, err := s.store.ListByCorrelation(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &NotFoundError{Resource: "request", ID: correlationID}
	}
	return entries, nil
}

func (s *statusServiceImpl) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, &ValidationError{Field: "retention", Message: "must be positive"}
	}
	return s.store.PruneBefore(ctx, s.now().UTC().Add(-retention))
}

// Listener records started, completed and failed events. Delivery-level
// events are ignored; they carry no status.
func (s *statusServiceImpl) Listener() eventbus.Listener {
	return func(e eventbus.Event) {
		entry, ok := entryFromEvent(e)
		if !ok {
			return
		}
		if err := s.store.LogStatus(context.Background(), entry); err != nil {
			s.logger.Error("failed to record status",
				"correlation_id", entry.CorrelationID,
				"status", entry.Status,
				"error", err,
			)
		}
	}
}

func entryFromEvent(e eventbus.Event) (storage.StatusLogEntry, bool) {
	var status notification.Status
	switch e.Type {
	case notification.EventStarted:
		status = notification.StatusStarted
	case notification.EventCompleted:
		status = notification.StatusCompleted
	case notification.EventFailed:
		status = notification.StatusFailed
	default:
		return storage.StatusLogEntry{}, false
	}

	// Absent or malformed counts are recorded as zero.
	recipients, _ := strconv.Atoi(e.Payload["recipients"])
	return storage.StatusLogEntry{
		CorrelationID: e.CorrelationID(),
		Status:        string(status),
		ErrorKind:     e.Payload["kind"],
		ErrorMsg:      e.Payload["error"],
		Recipients:    recipients,
		CreatedAt:     e.Timestamp.UTC(),
	}, true
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
