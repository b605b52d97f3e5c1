package event

import (
	"testing"
	"time"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := NewBus()
	got := make(chan Data, 1)

	b.Subscribe(TopicAccessDenied, func(d Data) {
		got <- d
	})

	b.Publish(TopicAccessDenied, "payload")

	select {
	case d := <-got:
		if d.EventType != TopicAccessDenied {
			t.Errorf("EventType = %s", d.EventType)
		}
		if d.Payload != "payload" {
			t.Errorf("Payload = %v", d.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestPublishWrongTopicNotDelivered(t *testing.T) {
	b := NewBus()
	got := make(chan Data, 1)

	b.Subscribe(TopicAccessAllowed, func(d Data) {
		got <- d
	})

	b.Publish(TopicAccessDenied, nil)

	select {
	case <-got:
		t.Fatal("handler invoked for a different topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	b := NewBus()
	got := make(chan struct{}, 1)

	b.Subscribe(TopicAccessDenied, func(d Data) {
		panic("handler exploded")
	})
	b.Subscribe(TopicAccessDenied, func(d Data) {
		got <- struct{}{}
	})

	b.Publish(TopicAccessDenied, nil)

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("second handler never invoked")
	}
}

func TestNilHandlerIgnored(t *testing.T) {
	b := NewBus()
	b.Subscribe(TopicAccessAllowed, nil)

	// Must not panic.
	b.Publish(TopicAccessAllowed, nil)
}
