package metrics

import (
	"testing"
	"time"
)

func snapshot(moduleID, metricType string, value float64, ts time.Time) *Snapshot {
	return &Snapshot{
		ModuleID:   moduleID,
		MetricType: metricType,
		Value:      value,
		Timestamp:  ts,
	}
}

func TestMemoryStorageStoreBatchSkipsInvalid(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Unix(1700000000, 0)

	err := s.StoreBatch([]*Snapshot{
		snapshot("mod-a", TypeAccessAllowed, 1, base),
		nil,
		snapshot("", TypeAccessAllowed, 1, base),
		snapshot("mod-a", "", 1, base),
	})
	if err != nil {
		t.Fatalf("StoreBatch: %v", err)
	}

	got, err := s.Query(&QueryOptions{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("stored %d snapshots, want 1 (invalid skipped)", len(got))
	}
}

func TestMemoryStorageQueryFilters(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Unix(1700000000, 0)

	_ = s.StoreBatch([]*Snapshot{
		snapshot("mod-a", TypeAccessAllowed, 1, base),
		snapshot("mod-a", TypeAccessDenied, 1, base.Add(time.Minute)),
		snapshot("mod-b", TypeAccessAllowed, 1, base.Add(2*time.Minute)),
	})

	byModule, err := s.Query(&QueryOptions{ModuleID: "mod-a"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(byModule) != 2 {
		t.Errorf("module filter returned %d, want 2", len(byModule))
	}

	byType, err := s.Query(&QueryOptions{MetricType: TypeAccessDenied})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(byType) != 1 || byType[0].ModuleID != "mod-a" {
		t.Errorf("type filter returned %v", byType)
	}

	byRange, err := s.Query(&QueryOptions{Start: base.Add(time.Minute), End: base.Add(2 * time.Minute)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(byRange) != 2 {
		t.Errorf("range filter returned %d, want 2", len(byRange))
	}

	limited, err := s.Query(&QueryOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(limited) != 1 || !limited[0].Timestamp.Equal(base.Add(2*time.Minute)) {
		t.Errorf("limit should keep the newest, got %v", limited)
	}
}

func TestMemoryStorageGetLatest(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Unix(1700000000, 0)

	_ = s.StoreBatch([]*Snapshot{
		snapshot("mod-a", TypeAccessAllowed, 1, base),
		snapshot("mod-a", TypeAccessAllowed, 2, base.Add(time.Minute)),
		snapshot("mod-b", TypeAccessAllowed, 3, base.Add(2*time.Minute)),
	})

	got, err := s.GetLatest("mod-a", 1)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if len(got) != 1 || got[0].Value != 2 {
		t.Errorf("GetLatest = %v, want the newest mod-a snapshot", got)
	}

	if _, err := s.GetLatest("", 1); err == nil {
		t.Error("expected error for empty module id")
	}
}

func TestMemoryStorageCleanup(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Unix(1700000000, 0)

	_ = s.StoreBatch([]*Snapshot{
		snapshot("mod-a", TypeAccessAllowed, 1, base),
		snapshot("mod-a", TypeAccessAllowed, 2, base.Add(time.Hour)),
	})

	if err := s.Cleanup(base.Add(time.Minute)); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	got, _ := s.Query(&QueryOptions{})
	if len(got) != 1 || got[0].Value != 2 {
		t.Errorf("after cleanup got %v, want only the newer snapshot", got)
	}
}
