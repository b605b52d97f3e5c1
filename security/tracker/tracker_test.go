package tracker

import (
	"strings"
	"testing"
	"time"

	"github.com/modguard/modguard/security/types"
)

func testContext(maxExecMs, maxMem, maxNet, maxFs int64) *types.SecurityContext {
	return &types.SecurityContext{
		ModuleID: "mod-a",
		Constraints: types.ResourceConstraints{
			MaxExecutionTimeMs: maxExecMs,
			MaxMemoryBytes:     maxMem,
			MaxNetworkCalls:    maxNet,
			MaxFileSystemOps:   maxFs,
		},
	}
}

func TestEndReportsExecutionTimeViolation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tr := NewTracker(true,
		WithNow(func() time.Time { return now }),
		WithHeapReader(func() int64 { return 0 }),
	)

	tr.Start("op-1", testContext(5000, 0, 0, 0))
	now = now.Add(6 * time.Second)

	report := tr.End("op-1")
	if report.ExecutionTimeMs != 6000 {
		t.Errorf("ExecutionTimeMs = %d, want 6000", report.ExecutionTimeMs)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("violations = %v, want exactly one", report.Violations)
	}
	if !strings.Contains(report.Violations[0], "Execution time exceeded") {
		t.Errorf("violation = %q", report.Violations[0])
	}
}

func TestEndUnknownIDReturnsZeroReport(t *testing.T) {
	tr := NewTracker(true)

	report := tr.End("never-started")
	if report == nil {
		t.Fatal("report is nil")
	}
	if len(report.Violations) != 0 || report.ExecutionTimeMs != 0 || report.MemoryUsageBytes != 0 {
		t.Errorf("zero report expected, got %+v", report)
	}
}

func TestTrackUsageViolations(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tr := NewTracker(true,
		WithNow(func() time.Time { return now }),
		WithHeapReader(func() int64 { return 0 }),
	)

	tr.Start("op-1", testContext(60000, 0, 2, 2))
	tr.Track("op-1", types.ResourceNetwork, 3)
	tr.Track("op-1", types.ResourceFileSystem, 1)

	report := tr.End("op-1")
	if len(report.Violations) != 1 {
		t.Fatalf("violations = %v, want network only", report.Violations)
	}
	if !strings.Contains(report.Violations[0], "network usage exceeded") {
		t.Errorf("violation = %q", report.Violations[0])
	}
}

func TestTrackMemoryViolation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	heap := int64(1000)
	tr := NewTracker(true,
		WithNow(func() time.Time { return now }),
		WithHeapReader(func() int64 { return heap }),
	)

	tr.Start("op-1", testContext(0, 500, 0, 0))
	heap = 2000

	report := tr.End("op-1")
	if report.MemoryUsageBytes != 1000 {
		t.Errorf("MemoryUsageBytes = %d, want 1000", report.MemoryUsageBytes)
	}
	if len(report.Violations) != 1 || !strings.Contains(report.Violations[0], "Memory usage exceeded") {
		t.Errorf("violations = %v", report.Violations)
	}
	if tr.PeakMemory() != 1000 {
		t.Errorf("PeakMemory = %d, want 1000", tr.PeakMemory())
	}
}

func TestTrackIgnoresUnknownAndInvalid(t *testing.T) {
	tr := NewTracker(true)

	// None of these may panic or create state.
	tr.Track("never-started", types.ResourceNetwork, 1)
	tr.Track("", types.ResourceNetwork, 1)
	tr.Start("op-1", testContext(0, 0, 0, 0))
	tr.Track("op-1", "gpu", 1)
	tr.Track("op-1", types.ResourceNetwork, -5)

	report := tr.End("op-1")
	if len(report.Violations) != 0 {
		t.Errorf("violations = %v, want none", report.Violations)
	}
}

func TestDisabledTrackerIsNoop(t *testing.T) {
	tr := NewTracker(false)

	tr.Start("op-1", testContext(1, 1, 1, 1))
	if tr.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0 when disabled", tr.ActiveCount())
	}

	report := tr.End("op-1")
	if len(report.Violations) != 0 || report.ExecutionTimeMs != 0 {
		t.Errorf("zero report expected when disabled, got %+v", report)
	}
}

func TestActiveCount(t *testing.T) {
	tr := NewTracker(true)

	tr.Start("op-1", testContext(0, 0, 0, 0))
	tr.Start("op-2", testContext(0, 0, 0, 0))
	if tr.ActiveCount() != 2 {
		t.Errorf("ActiveCount = %d, want 2", tr.ActiveCount())
	}

	tr.End("op-1")
	if tr.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", tr.ActiveCount())
	}
}
