package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/emailnotify/internal/api"
	"github.com/shaharia-lab/emailnotify/internal/build"
	"github.com/shaharia-lab/emailnotify/internal/config"
	"github.com/shaharia-lab/emailnotify/internal/eventbus"
	"github.com/shaharia-lab/emailnotify/internal/logger"
	"github.com/shaharia-lab/emailnotify/internal/metrics"
	"github.com/shaharia-lab/emailnotify/internal/notification"
	"github.com/shaharia-lab/emailnotify/internal/queue"
	"github.com/shaharia-lab/emailnotify/internal/scheduler"
	"github.com/shaharia-lab/emailnotify/internal/server"
	"github.com/shaharia-lab/emailnotify/internal/service"
	"github.com/shaharia-lab/emailnotify/internal/storage"
	"github.com/shaharia-lab/emailnotify/internal/worker"
)

const eventBusWorkers = 2

// NewWorkerCmd returns the "worker" subcommand that consumes the request queue.
func NewWorkerCmd(cfg *config.AppConfig) *cobra.Command {
	var workers, port int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume notification requests and deliver them by email",
		Long: `Start the notification worker. Requests are read from the Redis list
QUEUE_KEY, delivered through the configured mail relay, and status events are
pushed to each request's reply list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("http-port") {
				cfg.HTTPPort = port
			}
			if err := cfg.ValidateRelay(); err != nil {
				return err
			}

			logFile := filepath.Join(cfg.LogDir(), "system.log")
			printBanner(cmd.OutOrStdout(), build.Version, []bannerLine{
				{"relay", relayLabel(cfg)},
				{"queue", cfg.RedisAddr + "/" + cfg.QueueKey},
				{"workers", strconv.Itoa(cfg.Workers)},
				{"http", httpLabel(cfg.HTTPPort)},
				{"logs", logFile},
			})

			if err := runWorker(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "An error occurred. Please check the logs at: %s\n", logFile)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "Concurrent requests (overrides WORKERS env var)")
	cmd.Flags().IntVar(&port, "http-port", cfg.HTTPPort, "Health/metrics/API port, 0 disables (overrides HTTP_PORT env var)")
	return cmd
}

func relayLabel(cfg *config.AppConfig) string {
	if cfg.Relay == notification.RelayGmail {
		return "gmail api as " + cfg.SMTPFrom
	}
	return fmt.Sprintf("smtp %s:%d", cfg.SMTPHost, cfg.SMTPPort)
}

// newRelay builds the outbound relay selected by MAIL_RELAY.
func newRelay(ctx context.Context, cfg *config.AppConfig) (notification.Relay, error) {
	if cfg.Relay == notification.RelayGmail {
		return notification.NewGmailRelay(ctx, cfg.Gmail())
	}
	return notification.NewSMTPRelay(cfg.SMTP()), nil
}

func httpLabel(port int) string {
	if port <= 0 {
		return "disabled"
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

func runWorker(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir(), logger.Options{
		Level:  cfg.SlogLevel(),
		Stderr: cfg.LogStderr,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	sysLogger.Info("emailnotify starting",
		slog.String("data_dir", cfg.DataDir),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("build_date", build.BuildDate),
	)

	db, fresh, err := storage.NewSQLiteDB(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening status database: %w", err)
	}
	defer func() { _ = db.Close() }()
	if fresh {
		sysLogger.Info("created status database", "path", cfg.DatabasePath())
	}

	statusSvc := service.NewStatusService(storage.NewSQLiteStatusStore(db), sysLogger)
	m := metrics.New()

	bus := eventbus.New(eventBusWorkers, sysLogger)
	defer bus.Close()
	bus.Subscribe(statusSvc.Listener())
	bus.Subscribe(m.Listener())

	q, err := queue.NewRedisQueue(ctx, queue.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Key:      cfg.QueueKey,
		Logger:   sysLogger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	relay, err := newRelay(ctx, cfg)
	if err != nil {
		return err
	}

	handler := notification.NewNotificationHandler(
		relay,
		q,
		cfg.SMTPFrom,
		notification.WithSendTimeout(cfg.SMTPTimeout),
		notification.WithEventPublisher(bus),
		notification.WithLogger(sysLogger),
	)

	sched, err := scheduler.New(scheduler.Config{
		Pruner:         statusSvc,
		Retention:      cfg.StatusRetention,
		Logger:         sysLogger,
		EventPublisher: bus,
	})
	if err != nil {
		return fmt.Errorf("creating retention scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = sched.Stop() }()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	if cfg.HTTPPort > 0 {
		srv := server.New(api.New(statusSvc, sysLogger), m.Handler(), cfg.HTTPPort, sysLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				sysLogger.Error("http server stopped", "error", err)
				errCh <- err
				cancel()
			}
		}()
	}

	sysLogger.Info("worker ready", "queue", cfg.QueueKey, "workers", cfg.Workers)
	worker.NewDispatcher(cfg.Workers, q, handler, sysLogger).Run(ctx)
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
