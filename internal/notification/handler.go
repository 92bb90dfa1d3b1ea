package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSendTimeout bounds a single relay submission.
const DefaultSendTimeout = 30 * time.Second

// Lifecycle event types published to the optional EventPublisher.
const (
	EventStarted        = "notification.started"
	EventCompleted      = "notification.completed"
	EventFailed         = "notification.failed"
	EventDeliverySent   = "notification.delivery.sent"
	EventDeliveryFailed = "notification.delivery.failed"
)

// Inbound is the transport message a request arrived in.
type Inbound interface {
	// Ack marks the message as received at the transport layer.
	Ack() error
}

// StatusPublisher sends status events to a reply destination.
type StatusPublisher interface {
	Publish(ctx context.Context, replyTo, correlationID string, event StatusEvent) error
}

// Reporter receives human-readable progress and error text for a request.
type Reporter interface {
	Info(text string)
	Error(text string)
}

// EventPublisher allows the handler to emit lifecycle events without
// depending on a concrete event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

// NotificationHandler validates one request per call, delivers it to every
// target through the relay and reports started, then completed or failed.
// It holds no per-request state and is safe for concurrent use.
// The name is intentional: it provides clarity when referenced as notification.NotificationHandler.
//
//nolint:revive
type NotificationHandler struct {
	relay       Relay
	publisher   StatusPublisher
	from        string
	sendTimeout time.Duration
	events      EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
}

// HandlerOption configures a NotificationHandler.
type HandlerOption func(*NotificationHandler)

// WithSendTimeout overrides DefaultSendTimeout. Non-positive values are ignored.
func WithSendTimeout(d time.Duration) HandlerOption {
	return func(h *NotificationHandler) {
		if d > 0 {
			h.sendTimeout = d
		}
	}
}

// WithEventPublisher sets the publisher for lifecycle events.
func WithEventPublisher(p EventPublisher) HandlerOption {
	return func(h *NotificationHandler) { h.events = p }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *NotificationHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewNotificationHandler creates a handler that sends mail from the given
// sender address through relay and reports status through publisher.
func NewNotificationHandler(relay Relay, publisher StatusPublisher, from string, opts ...HandlerOption) *NotificationHandler {
	h := &NotificationHandler{
		relay:       relay,
		publisher:   publisher,
		from:        from,
		sendTimeout: DefaultSendTimeout,
		logger:      slog.Default(),
		tracer:      otel.Tracer("github.com/shaharia-lab/emailnotify/internal/notification"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Process handles one inbound message. It acknowledges msg, reports
// started, validates payload, delivers to every target in order and reports
// completed. Any validation or delivery failure is written to output and
// reported as failed instead. Process never returns an error and always
// reaches exactly one terminal status; cancellation of ctx does not stop a
// request that has already started.
func (h *NotificationHandler) Process(ctx context.Context, msg Inbound, payload any, reply ReplyChannel, output Reporter) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := h.tracer.Start(ctx, "notification.process",
		trace.WithAttributes(attribute.String("correlation_id", reply.CorrelationID)))
	defer span.End()

	log := h.logger.With(
		slog.String("correlation_id", reply.CorrelationID),
		slog.String("reply_to", reply.ReplyTo),
	)

	if err := msg.Ack(); err != nil {
		log.Warn("failed to acknowledge message", "error", err)
	}

	var tracker statusTracker
	h.emit(ctx, log, &tracker, reply, StatusStarted)
	h.publishEvent(EventStarted, reply, nil)

	req, err := ParseRequest(payload)
	sent := 0
	if err == nil {
		span.SetAttributes(
			attribute.Int("target_count", len(req.Target)),
			attribute.String("phase", req.Phase),
		)
		output.Info(fmt.Sprintf("Sending notification to %s via email", strings.Join(req.Target, ", ")))
		sent, err = h.deliver(ctx, log, req, reply)
	}

	if err != nil {
		log.Error("notification failed",
			slog.String("kind", KindOf(err).String()),
			slog.Int("delivered", sent),
			slog.String("error", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		output.Error(err.Error())
		h.emit(ctx, log, &tracker, reply, StatusFailed)
		h.publishEvent(EventFailed, reply, map[string]string{
			"kind":       KindOf(err).String(),
			"error":      err.Error(),
			"recipients": strconv.Itoa(sent),
		})
		return
	}

	output.Info("Email notification sent!")
	log.Info("finished email notification with no errors", slog.Int("recipients", sent))
	h.emit(ctx, log, &tracker, reply, StatusCompleted)
	h.publishEvent(EventCompleted, reply, map[string]string{"recipients": strconv.Itoa(sent)})
}

// deliver submits one message per target, in order, and stops at the first
// failure. It returns the number of targets that were delivered; the failing
// attempt itself has been submitted to the relay but is not counted.
func (h *NotificationHandler) deliver(ctx context.Context, log *slog.Logger, req *NotificationRequest, reply ReplyChannel) (int, error) {
	for i, addr := range req.Target {
		msg := Message{
			From:    h.from,
			To:      addr,
			Subject: req.Slug,
			Body:    req.Message,
		}

		start := time.Now()
		err := h.send(ctx, msg)
		elapsed := time.Since(start)

		if err != nil {
			h.publishEvent(EventDeliveryFailed, reply, map[string]string{
				"relay":       h.relay.Name(),
				"duration_ms": strconv.FormatInt(elapsed.Milliseconds(), 10),
				"error":       err.Error(),
			})
			return i, &Error{
				Kind:    DeliveryFailure,
				Field:   fmt.Sprintf("target[%d]", i),
				Message: fmt.Sprintf("failed to deliver notification to %s (%d of %d sent)", addr, i, len(req.Target)),
				Err:     err,
			}
		}

		log.Debug("notification delivered", slog.Int("index", i), slog.Duration("duration", elapsed))
		h.publishEvent(EventDeliverySent, reply, map[string]string{
			"relay":       h.relay.Name(),
			"duration_ms": strconv.FormatInt(elapsed.Milliseconds(), 10),
		})
	}
	return len(req.Target), nil
}

func (h *NotificationHandler) send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "notification.send",
		trace.WithAttributes(attribute.String("relay", h.relay.Name())))
	defer span.End()

	err := h.relay.Send(ctx, msg)
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("relay did not answer within %s: %w", h.sendTimeout, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// emit advances the tracker and publishes the status. Publishing is fire and
// forget: a failure is logged and does not change the request's outcome.
func (h *NotificationHandler) emit(ctx context.Context, log *slog.Logger, t *statusTracker, reply ReplyChannel, status Status) {
	if err := t.advance(status); err != nil {
		log.Error("refusing status event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, reply.ReplyTo, reply.CorrelationID, StatusEvent{Status: status}); err != nil {
		log.Error("failed to publish status event", slog.String("status", string(status)), slog.String("error", err.Error()))
	}
}

func (h *NotificationHandler) publishEvent(eventType string, reply ReplyChannel, payload map[string]string) {
	if h.events == nil {
		return
	}
	p := map[string]string{"correlation_id": reply.CorrelationID}
	for k, v := range payload {
		p[k] = v
	}
	h.events.Publish(eventType, p)
}
