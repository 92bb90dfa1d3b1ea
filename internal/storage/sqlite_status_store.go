package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultListLimit applies when ListStatuses is called with a non-positive limit.
const DefaultListLimit = 50

// SQLiteStatusStore implements StatusStore backed by SQLite.
type SQLiteStatusStore struct {
	db *sql.DB
}

// NewSQLiteStatusStore returns a new SQLiteStatusStore.
func NewSQLiteStatusStore(db *sql.DB) *SQLiteStatusStore {
	return &SQLiteStatusStore{db: db}
}

// LogStatus inserts a status record into the database.
func (s *SQLiteStatusStore) LogStatus(ctx context.Context, entry StatusLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_log (correlation_id, status, error_kind, error_msg, recipients, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.CorrelationID, entry.Status, entry.ErrorKind,
		entry.ErrorMsg, entry.Recipients, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting status log: %w", err)
	}
	return nil
}

// ListStatuses returns the most recent entries ordered by created_at descending.
func (s *SQLiteStatusStore) ListStatuses(ctx context.Context, limit int) ([]StatusLogEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.query(ctx, `
		SELECT id, correlation_id, status, error_kind, error_msg, recipients, created_at
		FROM status_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
}

// ListByCorrelation returns the history of one request in event time order.
// Rows may be inserted out of order by concurrent listeners, so the id only
// breaks ties.
func (s *SQLiteStatusStore) ListByCorrelation(ctx context.Context, correlationID string) ([]StatusLogEntry, error) {
	return s.query(ctx, `
		SELECT id, correlation_id, status, error_kind, error_msg, recipients, created_at
		FROM status_log
		WHERE correlation_id = ?
		ORDER BY created_at ASC, id ASC`, correlationID)
}

// PruneBefore deletes entries older than t.
func (s *SQLiteStatusStore) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM status_log WHERE created_at < ?`, t)
	if err != nil {
		return 0, fmt.Errorf("pruning status log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return n, nil
}

func (s *SQLiteStatusStore) query(ctx context.Context, q string, args ...any) (entries []StatusLogEntry, err error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying status log: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	entries = []StatusLogEntry{}
	for rows.Next() {
		var e StatusLogEntry
		if err := rows.Scan(&e.ID, &e.CorrelationID, &e.Status, &e.ErrorKind,
			&e.ErrorMsg, &e.Recipients, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning status log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status log rows: %w", err)
	}
	return entries, nil
}
