// Package queue carries notification requests to the worker and status
// replies back to the requesting party.
package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/emailnotify/internal/notification"
)

// Envelope is the transport wrapper around a request body.
type Envelope struct {
	ID            string          `json:"id"`
	CorrelationID string          `json:"correlation_id"`
	ReplyTo       string          `json:"reply_to"`
	Body          json.RawMessage `json:"body"`
	EnqueuedAt    time.Time       `json:"enqueued_at"`
}

// StatusReply is what a requester reads from its reply destination.
type StatusReply struct {
	CorrelationID string              `json:"correlation_id"`
	Status        notification.Status `json:"status"`
	Timestamp     time.Time           `json:"timestamp"`
}

// Delivery is a received envelope that must be acknowledged exactly once.
type Delivery struct {
	Envelope
	ack    func() error
	once   sync.Once
	ackErr error
}

// NewDelivery wraps env with an acknowledgment function.
func NewDelivery(env Envelope, ack func() error) *Delivery {
	return &Delivery{Envelope: env, ack: ack}
}

// Ack marks the delivery as received. Calls after the first return the
// first call's result without acknowledging again.
func (d *Delivery) Ack() error {
	d.once.Do(func() {
		if d.ack != nil {
			d.ackErr = d.ack()
		}
	})
	return d.ackErr
}

// Queue is implemented by every transport backend.
type Queue interface {
	// Enqueue adds a request envelope to the queue.
	Enqueue(ctx context.Context, env Envelope) error
	// Receive blocks until an envelope is available or ctx is done.
	Receive(ctx context.Context) (*Delivery, error)
	// Publish sends a status event to replyTo.
	Publish(ctx context.Context, replyTo, correlationID string, event notification.StatusEvent) error
	// WaitStatus blocks until a status reply arrives on replyTo or ctx is done.
	WaitStatus(ctx context.Context, replyTo string) (*StatusReply, error)
}

// prepare fills in the identifiers and timestamp of a new envelope.
func prepare(env Envelope) Envelope {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if env.CorrelationID == "" {
		env.CorrelationID = env.ID
	}
	if env.EnqueuedAt.IsZero() {
		env.EnqueuedAt = time.Now().UTC()
	}
	return env
}
