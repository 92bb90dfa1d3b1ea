// Package notification validates email notification requests, delivers them
// through an SMTP relay, and reports their progress back to the requester.
package notification

import "context"

// Message is a single outbound mail: one recipient, one delivery attempt.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Relay submits composed messages to an outbound mail transfer agent.
type Relay interface {
	// Name returns the relay identifier (e.g. "smtp").
	Name() string
	// Send blocks until the relay accepted or rejected msg.
	Send(ctx context.Context, msg Message) error
}
