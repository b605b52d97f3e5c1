// Package ratelimit implements a fixed-window call counter keyed by
// (module, operation). Buckets for the same operation under different
// modules are fully independent.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	count       int64
	windowStart time.Time
}

// Limiter tracks per-key fixed windows. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter creates a limiter with lazily created buckets.
func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func key(moduleID, operation string) string {
	return moduleID + ":" + operation
}

// Allow consumes one call from the (moduleID, operation) window and reports
// whether the call is within budget. The window resets once windowMs has
// elapsed since it opened; a rejected call does not consume budget.
func (l *Limiter) Allow(moduleID, operation string, maxCalls, windowMs int64) bool {
	if maxCalls <= 0 || windowMs <= 0 {
		return true
	}

	now := l.now()
	window := time.Duration(windowMs) * time.Millisecond

	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(moduleID, operation)
	b, ok := l.buckets[k]
	if !ok {
		b = &bucket{windowStart: now}
		l.buckets[k] = b
	}

	if now.Sub(b.windowStart) >= window {
		b.count = 0
		b.windowStart = now
	}

	if b.count < maxCalls {
		b.count++
		return true
	}
	return false
}

// Reset drops all buckets.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*bucket)
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
