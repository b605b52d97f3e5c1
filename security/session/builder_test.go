package session

import (
	"testing"

	"github.com/modguard/modguard/security/types"
)

func TestBuildTierResources(t *testing.T) {
	tests := []struct {
		name        string
		priority    types.Priority
		permissions []string
		allowed     []types.ResourceType
		denied      []types.ResourceType
	}{
		{
			name:     "critical reaches everything",
			priority: types.PriorityCritical,
			allowed:  types.AllResourceTypes,
		},
		{
			name:     "high excludes environment module system",
			priority: types.PriorityHigh,
			allowed: []types.ResourceType{
				types.ResourceDatabase, types.ResourceFileSystem, types.ResourceNetwork,
				types.ResourceContainer, types.ResourceEventBus,
			},
			denied: []types.ResourceType{types.ResourceEnvironment, types.ResourceModule, types.ResourceSystem},
		},
		{
			name:        "medium gains database with matching permission",
			priority:    types.PriorityMedium,
			permissions: []string{"database:read"},
			allowed:     []types.ResourceType{types.ResourceEventBus, types.ResourceDatabase},
			denied:      []types.ResourceType{types.ResourceNetwork, types.ResourceFileSystem},
		},
		{
			name:     "medium without permissions only eventbus",
			priority: types.PriorityMedium,
			allowed:  []types.ResourceType{types.ResourceEventBus},
			denied:   []types.ResourceType{types.ResourceDatabase, types.ResourceNetwork},
		},
		{
			name:     "low confined to eventbus and container",
			priority: types.PriorityLow,
			allowed:  []types.ResourceType{types.ResourceEventBus, types.ResourceContainer},
			denied:   []types.ResourceType{types.ResourceSystem, types.ResourceModule, types.ResourceDatabase},
		},
	}

	b := NewBuilder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := b.Build("mod-a", tt.priority, tt.permissions, "")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			for _, rt := range tt.allowed {
				if !sc.AllowsResource(rt) {
					t.Errorf("expected %s to be allowed for %s", rt, tt.priority)
				}
			}
			for _, rt := range tt.denied {
				if sc.AllowsResource(rt) {
					t.Errorf("expected %s to be denied for %s", rt, tt.priority)
				}
			}
		})
	}
}

func TestBuildTierConstraints(t *testing.T) {
	b := NewBuilder()

	sc, err := b.Build("mod-a", types.PriorityLow, nil, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if sc.Constraints.MaxExecutionTimeMs != 5000 {
		t.Errorf("low tier MaxExecutionTimeMs = %d, want 5000", sc.Constraints.MaxExecutionTimeMs)
	}
	if sc.Constraints.MaxMemoryBytes != 64*1024*1024 {
		t.Errorf("low tier MaxMemoryBytes = %d, want %d", sc.Constraints.MaxMemoryBytes, 64*1024*1024)
	}
	if sc.Constraints.MaxNetworkCalls != 10 {
		t.Errorf("low tier MaxNetworkCalls = %d, want 10", sc.Constraints.MaxNetworkCalls)
	}
}

func TestBuildValidation(t *testing.T) {
	b := NewBuilder()

	if _, err := b.Build("  ", types.PriorityLow, nil, ""); err == nil {
		t.Error("expected error for blank module id")
	}
	if _, err := b.Build("mod-a", "extreme", nil, ""); err == nil {
		t.Error("expected error for unknown priority")
	}
}

func TestBuildSessionIDsUnique(t *testing.T) {
	b := NewBuilder()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sc, err := b.Build("mod-a", types.PriorityMedium, nil, "")
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if seen[sc.SessionID] {
			t.Fatalf("duplicate session id: %s", sc.SessionID)
		}
		seen[sc.SessionID] = true
	}
}

func TestBuildCopiesPermissions(t *testing.T) {
	b := NewBuilder()

	perms := []string{"database:read"}
	sc, err := b.Build("mod-a", types.PriorityHigh, perms, "user-1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	perms[0] = "mutated"
	if sc.Permissions[0] != "database:read" {
		t.Error("context shares the caller's permissions slice")
	}
}
