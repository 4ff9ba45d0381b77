package domain

import (
	"context"
)

// EventHandler processes case lifecycle events.
type EventHandler func(ctx context.Context, ev *Event) error

// Event is an in-process notification about a case run. Payload holds
// the JSON-encoded case result for completed events and the error text
// for failed ones.
type Event struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	CaseID    string `json:"caseId"`
	Payload   []byte `json:"payload,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Subscription represents an active event subscription.
type Subscription interface {
	// Unsubscribe stops receiving events.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventStream is the consumer view of the case event bus. Publishing
// stays with the pipeline.
type EventStream interface {
	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, topic string, handler EventHandler) (Subscription, error)
}

// Topics published by the case pipeline.
const (
	TopicCaseStarted   = "datesift.case.started"
	TopicCaseCompleted = "datesift.case.completed"
	TopicCaseFailed    = "datesift.case.failed"
)

// EventsConfig holds event stream settings.
type EventsConfig struct {
	BufferSize int `json:"bufferSize" yaml:"bufferSize"`
}
