package policy

import (
	"context"
	"testing"

	"github.com/modguard/modguard/security/types"
)

func testPolicy(name string, priority int) types.Policy {
	return &types.PolicyFunc{
		PolicyName:     name,
		PolicyPriority: priority,
		Fn: func(ctx context.Context, req *types.AccessRequest) (*types.PolicyDecision, error) {
			return types.Allow(), nil
		},
	}
}

func TestRegistryOrdering(t *testing.T) {
	r := NewRegistry()
	r.Add(testPolicy("c", 50))
	r.Add(testPolicy("a", 10))
	r.Add(testPolicy("b", 30))

	got := r.Snapshot()
	want := []string{"a", "b", "c"}
	for i, p := range got {
		if p.Name() != want[i] {
			t.Errorf("pipeline[%d] = %s, want %s", i, p.Name(), want[i])
		}
	}
}

func TestRegistryReplaceByName(t *testing.T) {
	r := NewRegistry()
	r.Add(testPolicy("a", 10))
	r.Add(testPolicy("a", 90))

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (re-adding a name replaces)", r.Len())
	}

	p, ok := r.Get("a")
	if !ok {
		t.Fatal("policy a not found")
	}
	if p.Priority() != 90 {
		t.Errorf("priority = %d, want 90 (replacement wins)", p.Priority())
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Add(testPolicy("a", 10))

	if !r.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if r.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Add(testPolicy("a", 10))

	snap := r.Snapshot()
	snap[0] = testPolicy("mutated", 1)

	if p, _ := r.Get("a"); p == nil {
		t.Error("mutating a snapshot affected the registry")
	}
}
