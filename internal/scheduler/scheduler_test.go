package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/emailnotify/internal/scheduler"
)

// --- helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubPruner struct {
	calls     atomic.Int32
	retention atomic.Int64
	removed   int64
	err       error
}

func (p *stubPruner) Prune(_ context.Context, retention time.Duration) (int64, error) {
	p.calls.Add(1)
	p.retention.Store(int64(retention))
	return p.removed, p.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	last   map[string]string
}

func (r *recordingPublisher) Publish(eventType string, payload map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	r.last = payload
}

// --- tests ---

func TestNew_Validation(t *testing.T) {
	_, err := scheduler.New(scheduler.Config{Retention: time.Hour})
	assert.Error(t, err)

	_, err = scheduler.New(scheduler.Config{Pruner: &stubPruner{}})
	assert.Error(t, err)
}

func TestRunPrune_PublishesOutcome(t *testing.T) {
	pruner := &stubPruner{removed: 3}
	pub := &recordingPublisher{}
	s, err := scheduler.New(scheduler.Config{
		Pruner:         pruner,
		Retention:      48 * time.Hour,
		Logger:         newTestLogger(),
		EventPublisher: pub,
	})
	require.NoError(t, err)

	s.RunPrune(context.Background())

	assert.EqualValues(t, 1, pruner.calls.Load())
	assert.Equal(t, int64(48*time.Hour), pruner.retention.Load())
	assert.Equal(t, []string{scheduler.EventPruneFinished}, pub.events)
	assert.Equal(t, "3", pub.last["removed"])
}

func TestRunPrune_Failure(t *testing.T) {
	pub := &recordingPublisher{}
	s, err := scheduler.New(scheduler.Config{
		Pruner:         &stubPruner{err: errors.New("db locked")},
		Retention:      time.Hour,
		Logger:         newTestLogger(),
		EventPublisher: pub,
	})
	require.NoError(t, err)

	s.RunPrune(context.Background())

	assert.Equal(t, []string{scheduler.EventPruneFailed}, pub.events)
	assert.Equal(t, "db locked", pub.last["error"])
}

func TestStart_RunsImmediately(t *testing.T) {
	pruner := &stubPruner{}
	s, err := scheduler.New(scheduler.Config{
		Pruner:    pruner,
		Retention: time.Hour,
		Interval:  time.Hour,
		Logger:    newTestLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop() })

	assert.Eventually(t, func() bool { return pruner.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
