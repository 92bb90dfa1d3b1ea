package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/emailnotify/internal/config"
	"github.com/shaharia-lab/emailnotify/internal/notification"
	"github.com/shaharia-lab/emailnotify/internal/queue"
)

type sendOptions struct {
	slug    string
	message string
	phase   string
	targets []string
	replyTo string
	wait    bool
	timeout time.Duration
}

// NewSendCmd returns the "send" subcommand that enqueues one notification
// request, optionally waiting for its terminal status.
func NewSendCmd(cfg *config.AppConfig) *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Enqueue a notification request",
		Example: `  emailnotify send --slug deploy --message "v1.2 is live" --phase finished \
    --target ops@example.com --target dev@example.com --wait`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.slug, "slug", "", "Short identifier used in the subject line")
	cmd.Flags().StringVar(&opts.message, "message", "", "Message body")
	cmd.Flags().StringVar(&opts.phase, "phase", "", "Phase label recorded with the request")
	cmd.Flags().StringArrayVar(&opts.targets, "target", nil, "Recipient address (repeatable)")
	cmd.Flags().StringVar(&opts.replyTo, "reply-to", "", "Reply list for status events (default: generated)")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "Wait for the request to complete or fail")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "How long --wait blocks")
	return cmd
}

func runSend(cmd *cobra.Command, cfg *config.AppConfig, opts sendOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(notification.NotificationRequest{
		Slug:    opts.slug,
		Message: opts.message,
		Phase:   opts.phase,
		Target:  opts.targets,
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	id := uuid.NewString()
	replyTo := opts.replyTo
	if replyTo == "" {
		replyTo = cfg.QueueKey + ":reply:" + id
	}

	q, err := queue.NewRedisQueue(ctx, queue.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Key:      cfg.QueueKey,
	})
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	if err := q.Enqueue(ctx, queue.Envelope{
		ID:            id,
		CorrelationID: id,
		ReplyTo:       replyTo,
		Body:          body,
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "queued %s (replies on %s)\n", id, replyTo)
	if !opts.wait {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	for {
		reply, err := q.WaitStatus(waitCtx, replyTo)
		if err != nil {
			return fmt.Errorf("waiting for status of %s: %w", id, err)
		}
		if reply.CorrelationID != id {
			continue
		}
		fmt.Fprintf(out, "%s %s\n", reply.Timestamp.Format(time.RFC3339),
			renderStatus(string(reply.Status), reply.Status != notification.StatusFailed))
		if reply.Status.IsTerminal() {
			if reply.Status == notification.StatusFailed {
				return fmt.Errorf("notification %s failed; see the worker log", id)
			}
			return nil
		}
	}
}
