package storage

import (
	"context"
	"time"
)

// StatusLogEntry records one status event reported for a request.
type StatusLogEntry struct {
	ID            int64     `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Status        string    `json:"status"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	ErrorMsg      string    `json:"error_msg,omitempty"`
	Recipients    int       `json:"recipients"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusStore defines the interface for persisting request status history.
type StatusStore interface {
	// LogStatus records a status event.
	LogStatus(ctx context.Context, entry StatusLogEntry) error
	// ListStatuses returns the most recent entries, up to limit.
	ListStatuses(ctx context.Context, limit int) ([]StatusLogEntry, error)
	// ListByCorrelation returns every entry for one request, oldest first.
	ListByCorrelation(ctx context.Context, correlationID string) ([]StatusLogEntry, error)
	// PruneBefore deletes entries created before t and returns how many were removed.
	PruneBefore(ctx context.Context, t time.Time) (int64, error)
}
