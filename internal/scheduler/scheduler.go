// Package scheduler runs periodic housekeeping jobs on gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// DefaultPruneInterval is how often the status log is pruned.
const DefaultPruneInterval = time.Hour

// EventPublisher allows the scheduler to emit events without depending on a
// concrete event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

// Event type constants for retention job notifications.
const (
	EventPruneFinished = "retention.prune.finished"
	EventPruneFailed   = "retention.prune.failed"
)

// Pruner deletes status log entries older than a retention window.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Config holds the scheduler configuration.
type Config struct {
	Pruner    Pruner
	Retention time.Duration
	// Interval defaults to DefaultPruneInterval.
	Interval time.Duration
	Logger   *slog.Logger
	// EventPublisher is optional. When set, prune outcomes are published.
	EventPublisher EventPublisher
}

// Scheduler runs the status retention job using gocron.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	jobID  uuid.UUID
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Pruner == nil {
		return nil, fmt.Errorf("scheduler requires a pruner")
	}
	if cfg.Retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", cfg.Retention)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPruneInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	return &Scheduler{
		cron:   cron,
		cfg:    cfg,
		logger: cfg.Logger,
	}, nil
}

// Start schedules the retention job, runs it once immediately and starts
// the gocron scheduler.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() { s.RunPrune(context.Background()) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduling retention job: %w", err)
	}
	s.jobID = job.ID()

	s.cron.Start()
	s.logger.Info("retention scheduler started",
		"interval", s.cfg.Interval, "retention", s.cfg.Retention)
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// RunPrune deletes expired status entries once and reports the outcome.
func (s *Scheduler) RunPrune(ctx context.Context) {
	removed, err := s.cfg.Pruner.Prune(ctx, s.cfg.Retention)
	if err != nil {
		s.logger.Error("status prune failed", "error", err)
		s.publish(EventPruneFailed, map[string]string{"error": err.Error()})
		return
	}
	if removed > 0 {
		s.logger.Info("status log pruned", "removed", removed)
	}
	s.publish(EventPruneFinished, map[string]string{"removed": fmt.Sprintf("%d", removed)})
}

func (s *Scheduler) publish(eventType string, payload map[string]string) {
	if s.cfg.EventPublisher != nil {
		s.cfg.EventPublisher.Publish(eventType, payload)
	}
}
