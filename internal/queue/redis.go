package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaharia-lab/emailnotify/internal/notification"
)

const (
	defaultPollTimeout = 5 * time.Second
	receiveRetryDelay  = time.Second
)

// RedisOptions configures a RedisQueue.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Key is the list requests are pushed to. Received entries are parked in
	// "<Key>:processing" until acknowledged.
	Key         string
	PollTimeout time.Duration
	Logger      *slog.Logger
}

// RedisQueue implements Queue on Redis lists. Requests are LPUSHed to the
// queue key and moved with BLMOVE to a processing list on receipt; Ack
// removes the entry from the processing list. Status replies are LPUSHed to
// the list named by the envelope's reply_to.
type RedisQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
	logger      *slog.Logger
}

// NewRedisQueue connects to Redis and returns a queue over opts.Key.
// A failed ping is returned so callers can refuse to start.
func NewRedisQueue(ctx context.Context, opts RedisOptions) (*RedisQueue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return newRedisQueue(rdb, opts), nil
}

func newRedisQueue(rdb *redis.Client, opts RedisOptions) *RedisQueue {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RedisQueue{
		client:      rdb,
		key:         opts.Key,
		pollTimeout: opts.PollTimeout,
		logger:      opts.Logger,
	}
}

func (q *RedisQueue) processingKey() string { return q.key + ":processing" }

// Enqueue pushes env to the head of the queue list.
func (q *RedisQueue) Enqueue(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(prepare(env))
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("pushing to %s: %w", q.key, err)
	}
	return nil
}

// Receive moves the oldest entry to the processing list and returns it.
// Entries that are not valid envelopes are dropped from the processing list
// and logged. Redis errors are logged and retried until ctx is done.
func (q *RedisQueue) Receive(ctx context.Context) (*Delivery, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := q.client.BLMove(ctx, q.key, q.processingKey(), "RIGHT", "LEFT", q.pollTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			q.logger.Error("redis receive failed, retrying", "key", q.key, "error", err)
			select {
			case <-time.After(receiveRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		ack := func() error { return q.client.LRem(context.Background(), q.processingKey(), 1, raw).Err() }

		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			q.logger.Error("dropping undecodable envelope", "key", q.key, "error", err, "raw", raw)
			if ackErr := ack(); ackErr != nil {
				q.logger.Error("failed to drop undecodable envelope", "error", ackErr)
			}
			continue
		}
		return NewDelivery(env, ack), nil
	}
}

// Publish pushes a status reply to the replyTo list.
func (q *RedisQueue) Publish(ctx context.Context, replyTo, correlationID string, event notification.StatusEvent) error {
	if replyTo == "" {
		return fmt.Errorf("no reply destination for %s", correlationID)
	}
	data, err := json.Marshal(StatusReply{
		CorrelationID: correlationID,
		Status:        event.Status,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding status reply: %w", err)
	}
	if err := q.client.LPush(ctx, replyTo, data).Err(); err != nil {
		return fmt.Errorf("pushing status to %s: %w", replyTo, err)
	}
	return nil
}

// WaitStatus pops the oldest reply from replyTo.
func (q *RedisQueue) WaitStatus(ctx context.Context, replyTo string) (*StatusReply, error) {
	for {
		res, err := q.client.BRPop(ctx, q.pollTimeout, replyTo).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("waiting for status on %s: %w", replyTo, err)
		}
		// res is [key, value]
		if len(res) < 2 {
			continue
		}
		var r StatusReply
		if err := json.Unmarshal([]byte(res[1]), &r); err != nil {
			return nil, fmt.Errorf("decoding status reply: %w", err)
		}
		return &r, nil
	}
}

// Close releases the Redis connection pool.
func (q *RedisQueue) Close() error { return q.client.Close() }
