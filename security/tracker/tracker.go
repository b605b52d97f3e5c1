// Package tracker records in-flight operations and detects constraint
// violations when they complete. Tracking is best-effort: no call here ever
// fails in a way the protected call site can observe.
package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/modguard/modguard/monitor"
	"github.com/modguard/modguard/security/types"
)

type activeOperation struct {
	context     *types.SecurityContext
	startTime   time.Time
	startMemory int64
	usage       map[types.ResourceType]int64
}

// Tracker holds the active-operation map. Safe for concurrent callers.
type Tracker struct {
	mu      sync.Mutex
	active  map[string]*activeOperation
	enabled bool
	now     func() time.Time
	heap    func() int64
	peakMem monitor.Peak
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithHeapReader overrides the memory probe, for tests.
func WithHeapReader(heap func() int64) Option {
	return func(t *Tracker) {
		t.heap = heap
	}
}

// NewTracker creates a tracker. When enabled is false every call becomes a
// no-op and completed operations report zero usage.
func NewTracker(enabled bool, opts ...Option) *Tracker {
	t := &Tracker{
		active:  make(map[string]*activeOperation),
		enabled: enabled,
		now:     time.Now,
		heap:    monitor.HeapAlloc,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enabled reports whether tracking is active.
func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Start records the beginning of an operation keyed by the caller-supplied
// id. Starting an id twice overwrites the earlier record.
func (t *Tracker) Start(operationID string, sc *types.SecurityContext) {
	if !t.enabled || operationID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[operationID] = &activeOperation{
		context:     sc,
		startTime:   t.now(),
		startMemory: t.heap(),
		usage:       make(map[types.ResourceType]int64),
	}
}

// Track increments the running usage counter for a resource type under an
// operation. Unknown ids and unrecognized resource types are silently
// ignored; tracking must never break the protected call site.
func (t *Tracker) Track(operationID string, rt types.ResourceType, amount int64) {
	if !t.enabled || !rt.Valid() || amount <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.active[operationID]
	if !ok {
		return
	}
	op.usage[rt] += amount
}

// End completes an operation: computes elapsed time and memory delta,
// compares both plus the per-resource counters against the context's
// constraints, and removes the record. Unknown ids yield a zero report.
func (t *Tracker) End(operationID string) *types.OperationReport {
	report := &types.OperationReport{Violations: []string{}}

	t.mu.Lock()
	op, ok := t.active[operationID]
	if ok {
		delete(t.active, operationID)
	}
	t.mu.Unlock()

	if !ok {
		return report
	}

	report.ExecutionTimeMs = t.now().Sub(op.startTime).Milliseconds()
	if delta := t.heap() - op.startMemory; delta > 0 {
		report.MemoryUsageBytes = delta
	}
	t.peakMem.Observe(report.MemoryUsageBytes)

	if op.context == nil {
		return report
	}
	constraints := op.context.Constraints

	if constraints.MaxExecutionTimeMs > 0 && report.ExecutionTimeMs > constraints.MaxExecutionTimeMs {
		report.Violations = append(report.Violations,
			fmt.Sprintf("Execution time exceeded: %dms > %dms", report.ExecutionTimeMs, constraints.MaxExecutionTimeMs))
	}

	if constraints.MaxMemoryBytes > 0 && report.MemoryUsageBytes > constraints.MaxMemoryBytes {
		report.Violations = append(report.Violations,
			fmt.Sprintf("Memory usage exceeded: %d > %d", report.MemoryUsageBytes, constraints.MaxMemoryBytes))
	}

	if constraints.MaxNetworkCalls > 0 {
		if used := op.usage[types.ResourceNetwork]; used > constraints.MaxNetworkCalls {
			report.Violations = append(report.Violations,
				fmt.Sprintf("%s usage exceeded: %d > %d", types.ResourceNetwork, used, constraints.MaxNetworkCalls))
		}
	}

	if constraints.MaxFileSystemOps > 0 {
		if used := op.usage[types.ResourceFileSystem]; used > constraints.MaxFileSystemOps {
			report.Violations = append(report.Violations,
				fmt.Sprintf("%s usage exceeded: %d > %d", types.ResourceFileSystem, used, constraints.MaxFileSystemOps))
		}
	}

	return report
}

// ActiveCount returns the number of in-flight operations.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// PeakMemory returns the largest memory delta any completed operation
// reported.
func (t *Tracker) PeakMemory() int64 {
	return t.peakMem.Value()
}
