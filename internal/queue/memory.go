package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shaharia-lab/emailnotify/internal/notification"
)

// MemoryQueue is a channel-based queue for tests and single-process runs.
type MemoryQueue struct {
	ch    chan Envelope
	acked atomic.Int64

	mu      sync.Mutex
	cond    *sync.Cond
	replies map[string][]StatusReply
}

// NewMemoryQueue creates a MemoryQueue buffering up to size envelopes.
func NewMemoryQueue(size int) *MemoryQueue {
	q := &MemoryQueue{
		ch:      make(chan Envelope, size),
		replies: make(map[string][]StatusReply),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue blocks while the buffer is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, env Envelope) error {
	select {
	case q.ch <- prepare(env):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next envelope.
func (q *MemoryQueue) Receive(ctx context.Context) (*Delivery, error) {
	select {
	case env := <-q.ch:
		return NewDelivery(env, func() error {
			q.acked.Add(1)
			return nil
		}), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Publish records a status reply for replyTo.
func (q *MemoryQueue) Publish(_ context.Context, replyTo, correlationID string, event notification.StatusEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.replies[replyTo] = append(q.replies[replyTo], StatusReply{
		CorrelationID: correlationID,
		Status:        event.Status,
		Timestamp:     time.Now().UTC(),
	})
	q.cond.Broadcast()
	return nil
}

// WaitStatus pops the oldest reply for replyTo.
func (q *MemoryQueue) WaitStatus(ctx context.Context, replyTo string) (*StatusReply, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.replies[replyTo]) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q.cond.Wait()
	}
	r := q.replies[replyTo][0]
	q.replies[replyTo] = q.replies[replyTo][1:]
	return &r, nil
}

// Replies returns a copy of every unread reply published to replyTo.
func (q *MemoryQueue) Replies(replyTo string) []StatusReply {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]StatusReply(nil), q.replies[replyTo]...)
}

// Acked returns how many deliveries have been acknowledged.
func (q *MemoryQueue) Acked() int64 { return q.acked.Load() }

// Len returns the number of envelopes waiting to be received.
func (q *MemoryQueue) Len() int { return len(q.ch) }
