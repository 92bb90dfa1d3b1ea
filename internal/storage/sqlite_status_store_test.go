package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/emailnotify/internal/storage"
)

func TestSQLiteStatusStore(t *testing.T) {
	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := storage.NewSQLiteStatusStore(db)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	t.Run("log and list", func(t *testing.T) {
		require.NoError(t, store.LogStatus(ctx, storage.StatusLogEntry{
			CorrelationID: "req-1",
			Status:        "started",
			CreatedAt:     base,
		}))
		require.NoError(t, store.LogStatus(ctx, storage.StatusLogEntry{
			CorrelationID: "req-1",
			Status:        "completed",
			Recipients:    2,
			CreatedAt:     base.Add(time.Second),
		}))

		list, err := store.ListStatuses(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		// Latest entry is first.
		assert.Equal(t, "completed", list[0].Status)
		assert.Equal(t, 2, list[0].Recipients)
		assert.Equal(t, "started", list[1].Status)
	})

	t.Run("failed status", func(t *testing.T) {
		require.NoError(t, store.LogStatus(ctx, storage.StatusLogEntry{
			CorrelationID: "req-2",
			Status:        "failed",
			ErrorKind:     "DeliveryFailure",
			ErrorMsg:      "connection refused",
			CreatedAt:     base.Add(2 * time.Second),
		}))

		history, err := store.ListByCorrelation(ctx, "req-2")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "DeliveryFailure", history[0].ErrorKind)
		assert.Equal(t, "connection refused", history[0].ErrorMsg)
	})

	t.Run("history is oldest first", func(t *testing.T) {
		history, err := store.ListByCorrelation(ctx, "req-1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "started", history[0].Status)
		assert.Equal(t, "completed", history[1].Status)
	})

	t.Run("unknown correlation", func(t *testing.T) {
		history, err := store.ListByCorrelation(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.NotNil(t, history)
	})

	t.Run("default limit", func(t *testing.T) {
		list, err := store.ListStatuses(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("prune", func(t *testing.T) {
		n, err := store.PruneBefore(ctx, base.Add(2*time.Second))
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		list, err := store.ListStatuses(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "req-2", list[0].CorrelationID)
	})

	t.Run("zero created_at is filled in", func(t *testing.T) {
		require.NoError(t, store.LogStatus(ctx, storage.StatusLogEntry{CorrelationID: "req-3", Status: "started"}))
		history, err := store.ListByCorrelation(ctx, "req-3")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.False(t, history[0].CreatedAt.IsZero())
	})
}

func TestSQLiteStatusStore_HistoryFollowsEventTime(t *testing.T) {
	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := storage.NewSQLiteStatusStore(db)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	// The terminal row reaches the table before the started row.
	require.NoError(t, store.LogStatus(ctx, storage.StatusLogEntry{
		CorrelationID: "req-1",
		Status:        "completed",
		CreatedAt:     base.Add(1500 * time.Microsecond),
	}))
	require.NoError(t, store.LogStatus(ctx, storage.StatusLogEntry{
		CorrelationID: "req-1",
		Status:        "started",
		CreatedAt:     base.Add(1200 * time.Microsecond),
	}))

	history, err := store.ListByCorrelation(ctx, "req-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "started", history[0].Status)
	assert.Equal(t, "completed", history[1].Status)
	assert.Greater(t, history[0].ID, history[1].ID, "started was inserted second")
}
