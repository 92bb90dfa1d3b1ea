package eventbus

import "time"

// Event represents a notification lifecycle event published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// CorrelationID returns the request correlation id carried by the event, if any.
func (e Event) CorrelationID() string {
	return e.Payload["correlation_id"]
}

// Listener is a function that handles an event.
type Listener func(Event)
