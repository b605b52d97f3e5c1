package ratelimit

import (
	"testing"
	"time"
)

func TestAllowFixedWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(WithNow(func() time.Time { return now }))

	if !l.Allow("mod-a", "query", 1, 60000) {
		t.Fatal("first call should be allowed")
	}
	if l.Allow("mod-a", "query", 1, 60000) {
		t.Fatal("second call in the same window should be rejected")
	}

	now = now.Add(60 * time.Second)
	if !l.Allow("mod-a", "query", 1, 60000) {
		t.Fatal("call after window elapsed should be allowed again")
	}
}

func TestAllowModulesIndependent(t *testing.T) {
	l := NewLimiter()

	if !l.Allow("mod-a", "query", 1, 60000) {
		t.Fatal("mod-a first call should be allowed")
	}
	if !l.Allow("mod-b", "query", 1, 60000) {
		t.Fatal("mod-b shares the operation name but not the budget")
	}
	if l.Allow("mod-a", "query", 1, 60000) {
		t.Fatal("mod-a second call should be rejected")
	}
}

func TestRejectedCallDoesNotConsumeBudget(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(WithNow(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		l.Allow("mod-a", "query", 2, 1000)
	}

	// Two allowed, one rejected. Window resets, full budget returns.
	now = now.Add(time.Second)
	if !l.Allow("mod-a", "query", 2, 1000) {
		t.Fatal("expected fresh budget after window reset")
	}
	if !l.Allow("mod-a", "query", 2, 1000) {
		t.Fatal("expected second call of fresh window to be allowed")
	}
}

func TestAllowUnconfiguredLimit(t *testing.T) {
	l := NewLimiter()

	if !l.Allow("mod-a", "query", 0, 1000) {
		t.Error("zero maxCalls means no limit")
	}
	if !l.Allow("mod-a", "query", 5, 0) {
		t.Error("zero windowMs means no limit")
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, unconfigured limits should not create buckets", l.Len())
	}
}

func TestReset(t *testing.T) {
	l := NewLimiter()
	l.Allow("mod-a", "query", 1, 60000)

	l.Reset()
	if l.Len() != 0 {
		t.Errorf("Len = %d after Reset, want 0", l.Len())
	}
	if !l.Allow("mod-a", "query", 1, 60000) {
		t.Error("expected fresh budget after Reset")
	}
}
