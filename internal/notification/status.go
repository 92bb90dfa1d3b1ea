package notification

import "fmt"

// Status is the value reported to the requesting party.
type Status string

// Status values. A request reports StatusStarted once, then exactly one of
// StatusCompleted or StatusFailed.
const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether s ends a request.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StatusEvent is the body of a status report.
type StatusEvent struct {
	Status Status `json:"status"`
}

// ReplyChannel identifies where status events for a request are sent.
type ReplyChannel struct {
	CorrelationID string
	ReplyTo       string
}

// statusTracker enforces started -> completed|failed for a single request.
type statusTracker struct {
	current Status
}

// advance moves to next, or returns an error when the transition would skip
// the started step or emit a second terminal status.
func (t *statusTracker) advance(next Status) error {
	switch {
	case t.current == "" && next == StatusStarted:
	case t.current == StatusStarted && next.IsTerminal():
	default:
		from := t.current
		if from == "" {
			from = "none"
		}
		return fmt.Errorf("invalid status transition %s -> %s", from, next)
	}
	t.current = next
	return nil
}
