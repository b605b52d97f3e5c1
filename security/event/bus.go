// Package event provides the in-process notification bus the security
// manager publishes decision events on. Consumers (lifecycle manager,
// alerting, operator tooling) subscribe by topic; delivery is asynchronous
// and a panicking handler never affects the publisher.
package event

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/modguard/modguard/logging/logger"
)

// Topics published by the security manager.
const (
	TopicAccessAllowed      = "security.access.allowed"
	TopicAccessDenied       = "security.access.denied"
	TopicRateLimitExceeded  = "security.ratelimit.exceeded"
	TopicOperationViolation = "security.operation.violation"
)

// Data wraps one published event.
type Data struct {
	Time      time.Time `json:"time"`
	Source    string    `json:"source"`
	EventType string    `json:"event_type"`
	Payload   any       `json:"payload"`
}

// Bus is a topic-keyed fan-out bus.
type Bus struct {
	subscribers map[string][]func(Data)
	mu          sync.RWMutex
	metrics     struct {
		published      atomic.Int64
		delivered      atomic.Int64
		failed         atomic.Int64
		activeHandlers atomic.Int32
		subscribers    atomic.Int32
	}
}

// NewBus creates a new Bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]func(Data)),
	}
}

// Subscribe adds a handler for a topic. Handlers run on their own
// goroutines; panics are recovered and counted as failures.
func (b *Bus) Subscribe(topic string, handler func(Data)) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	wrapped := func(data Data) {
		b.metrics.activeHandlers.Add(1)
		defer b.metrics.activeHandlers.Add(-1)

		defer func() {
			if r := recover(); r != nil {
				b.metrics.failed.Add(1)
				logger.Errorf(nil, "panic in event handler for %s: %v", topic, r)
			}
		}()

		handler(data)
		b.metrics.delivered.Add(1)
	}

	b.subscribers[topic] = append(b.subscribers[topic], wrapped)
	b.metrics.subscribers.Add(1)
}

// Publish sends an event to all subscribers of the topic, fire-and-forget.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	handlers := b.subscribers[topic]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	b.metrics.published.Add(1)

	data := Data{
		Time:      time.Now(),
		Source:    "security-manager",
		EventType: topic,
		Payload:   payload,
	}

	for _, handler := range handlers {
		go handler(data)
	}
}

// Metrics returns bus counters.
func (b *Bus) Metrics() map[string]any {
	return map[string]any{
		"published_events": b.metrics.published.Load(),
		"delivered_events": b.metrics.delivered.Load(),
		"failed_events":    b.metrics.failed.Load(),
		"active_handlers":  b.metrics.activeHandlers.Load(),
		"total":            b.metrics.subscribers.Load(),
	}
}
