// Package audit keeps the bounded, append-only trail of access decisions.
package audit

import (
	"sync"
	"time"

	"github.com/modguard/modguard/security/types"
)

// DefaultMaxSize bounds the ring buffer when no explicit size is configured.
const DefaultMaxSize = 10000

// Filter narrows an audit query. Zero-valued fields are ignored; set fields
// combine with AND. The time range is inclusive on both ends.
type Filter struct {
	ModuleID     string
	UserID       string
	ResourceType types.ResourceType
	Start        time.Time
	End          time.Time
}

func (f *Filter) matches(e *types.AuditEntry) bool {
	if f == nil {
		return true
	}
	if f.ModuleID != "" && e.ModuleID != f.ModuleID {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if !f.Start.IsZero() && e.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.Timestamp.After(f.End) {
		return false
	}
	return true
}

// Log is a FIFO-bounded, in-memory audit trail. Entries are immutable once
// appended; when the buffer is full the oldest entries are evicted.
type Log struct {
	mu      sync.RWMutex
	entries []*types.AuditEntry
	maxSize int
}

// NewLog creates an audit log bounded to maxSize entries. Non-positive sizes
// fall back to DefaultMaxSize.
func NewLog(maxSize int) *Log {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Log{maxSize: maxSize}
}

// Append records one decision, evicting the oldest entry when full.
func (l *Log) Append(entry *types.AuditEntry) {
	if entry == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxSize {
		overflow := len(l.entries) - l.maxSize
		l.entries = append(l.entries[:0:0], l.entries[overflow:]...)
	}
}

// Query returns entries matching the filter in insertion order. A nil filter
// returns the whole buffer.
func (l *Log) Query(filter *Filter) []*types.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*types.AuditEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Clear empties the buffer.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len returns the current entry count.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// MaxSize returns the configured bound.
func (l *Log) MaxSize() int {
	return l.maxSize
}
