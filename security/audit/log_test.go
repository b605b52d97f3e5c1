package audit

import (
	"fmt"
	"testing"
	"time"

	"github.com/modguard/modguard/security/types"
)

func entry(id, moduleID, userID string, rt types.ResourceType, ts time.Time) *types.AuditEntry {
	return &types.AuditEntry{
		ID:           id,
		ModuleID:     moduleID,
		UserID:       userID,
		ResourceType: rt,
		Timestamp:    ts,
		Allowed:      true,
	}
}

func TestAppendEvictsOldestFIFO(t *testing.T) {
	l := NewLog(3)
	base := time.Unix(1700000000, 0)

	for i := 0; i < 5; i++ {
		l.Append(entry(fmt.Sprintf("e%d", i), "mod-a", "", types.ResourceDatabase, base))
	}

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}

	got := l.Query(nil)
	want := []string{"e2", "e3", "e4"}
	for i, e := range got {
		if e.ID != want[i] {
			t.Errorf("entries[%d] = %s, want %s (oldest evicted, order preserved)", i, e.ID, want[i])
		}
	}
}

func TestQueryFilters(t *testing.T) {
	l := NewLog(10)
	base := time.Unix(1700000000, 0)

	l.Append(entry("e1", "mod-a", "u1", types.ResourceDatabase, base))
	l.Append(entry("e2", "mod-b", "u1", types.ResourceNetwork, base.Add(time.Minute)))
	l.Append(entry("e3", "mod-a", "u2", types.ResourceNetwork, base.Add(2*time.Minute)))

	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{"nil filter returns all", nil, []string{"e1", "e2", "e3"}},
		{"by module", &Filter{ModuleID: "mod-a"}, []string{"e1", "e3"}},
		{"by user", &Filter{UserID: "u1"}, []string{"e1", "e2"}},
		{"by resource type", &Filter{ResourceType: types.ResourceNetwork}, []string{"e2", "e3"}},
		{"inclusive time range", &Filter{Start: base.Add(time.Minute), End: base.Add(2 * time.Minute)}, []string{"e2", "e3"}},
		{"combined", &Filter{ModuleID: "mod-a", UserID: "u2"}, []string{"e3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Query(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.ID != tt.want[i] {
					t.Errorf("entries[%d] = %s, want %s", i, e.ID, tt.want[i])
				}
			}
		})
	}
}

func TestClear(t *testing.T) {
	l := NewLog(10)
	l.Append(entry("e1", "mod-a", "", types.ResourceDatabase, time.Now()))

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", l.Len())
	}
	if got := l.Query(nil); len(got) != 0 {
		t.Errorf("Query returned %d entries after Clear", len(got))
	}
}

func TestNewLogDefaultSize(t *testing.T) {
	l := NewLog(0)
	if l.MaxSize() != DefaultMaxSize {
		t.Errorf("MaxSize = %d, want %d", l.MaxSize(), DefaultMaxSize)
	}
}
