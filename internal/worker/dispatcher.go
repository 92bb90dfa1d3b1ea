// Package worker pulls requests off a queue and hands each one to the
// notification handler.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaharia-lab/emailnotify/internal/notification"
	"github.com/shaharia-lab/emailnotify/internal/queue"
)

const (
	defaultWorkers   = 1
	receiveErrorWait = time.Second
)

// Source yields inbound deliveries.
type Source interface {
	Receive(ctx context.Context) (*queue.Delivery, error)
}

// Processor handles a single inbound message.
type Processor interface {
	Process(ctx context.Context, msg notification.Inbound, payload any, reply notification.ReplyChannel, output notification.Reporter)
}

// Dispatcher runs a fixed pool of workers, each receiving and processing one
// delivery at a time.
type Dispatcher struct {
	workers   int
	source    Source
	processor Processor
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher. If workers is <= 0, one worker is used.
func NewDispatcher(workers int, source Source, processor Processor, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		workers:   workers,
		source:    source,
		processor: processor,
		logger:    logger,
	}
}

// Run blocks until ctx is canceled and every worker has finished its
// current delivery.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.work(ctx, id)
		}(i)
	}
	d.logger.Info("dispatcher started", "workers", d.workers)
	wg.Wait()
	d.logger.Info("dispatcher stopped")
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	for {
		del, err := d.source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("receive failed", "worker", id, "error", err)
			select {
			case <-time.After(receiveErrorWait):
			case <-ctx.Done():
				return
			}
			continue
		}
		d.handle(ctx, id, del)
	}
}

// handle runs one delivery with panic recovery so a bad message cannot take
// the worker down.
func (d *Dispatcher) handle(ctx context.Context, id int, del *queue.Delivery) {
	log := d.logger.With(
		slog.Int("worker", id),
		slog.String("message_id", del.ID),
		slog.String("correlation_id", del.CorrelationID),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("processor panicked", "panic", r)
		}
	}()

	log.Debug("processing message")
	d.processor.Process(ctx, del, []byte(del.Body),
		notification.ReplyChannel{CorrelationID: del.CorrelationID, ReplyTo: del.ReplyTo},
		notification.NewSlogReporter(log))
}
