// Package events provides the in-process case event stream.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vnexsus/datesift/domain"
)

// Bus fans case lifecycle events out to subscribers over Go channels.
// Delivery is best-effort: a subscriber whose buffer is full misses the
// event rather than blocking the pipeline.
type Bus struct {
	mu            sync.RWMutex
	bufferSize    int
	subscriptions map[string][]*subscription
	closed        bool
}

type subscription struct {
	id      string
	topic   string
	handler domain.EventHandler
	eventCh chan *domain.Event
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a channel-based event bus.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &Bus{
		bufferSize:    bufferSize,
		subscriptions: make(map[string][]*subscription),
	}
}

// Publish sends an event to every subscriber of the topic.
func (b *Bus) Publish(ctx context.Context, topic, caseID string, payload []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}

	ev := &domain.Event{
		ID:        uuid.New().String(),
		Topic:     topic,
		CaseID:    caseID,
		Payload:   payload,
		Timestamp: time.Now().UnixNano(),
	}

	subs := b.subscriptions[topic]
	b.mu.RUnlock()

	// Non-blocking send; a full subscriber drops the event
	for _, sub := range subs {
		select {
		case sub.eventCh <- ev:
		default:
		}
	}

	return nil
}

// Subscribe registers a handler for a topic. The handler runs on its
// own goroutine until Unsubscribe or bus Close.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler domain.EventHandler) (domain.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("event bus is closed")
	}

	subCtx, cancel := context.WithCancel(ctx)

	sub := &subscription{
		id:      uuid.New().String(),
		topic:   topic,
		handler: handler,
		eventCh: make(chan *domain.Event, b.bufferSize),
		ctx:     subCtx,
		cancel:  cancel,
	}

	go b.handleEvents(sub)

	b.subscriptions[topic] = append(b.subscriptions[topic], sub)

	return sub, nil
}

// handleEvents delivers events for one subscription.
func (b *Bus) handleEvents(sub *subscription) {
	for {
		select {
		case <-sub.ctx.Done():
			return
		case ev := <-sub.eventCh:
			if ev != nil {
				_ = sub.handler(sub.ctx, ev)
			}
		}
	}
}

// Close shuts the bus down and cancels all subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true

	for _, subs := range b.subscriptions {
		for _, sub := range subs {
			sub.cancel()
			close(sub.eventCh)
		}
	}

	b.subscriptions = make(map[string][]*subscription)
	return nil
}

// Unsubscribe stops receiving events.
func (s *subscription) Unsubscribe() error {
	s.cancel()
	return nil
}

// Topic returns the subscribed topic.
func (s *subscription) Topic() string {
	return s.topic
}
