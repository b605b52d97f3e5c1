package types

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		rt          ResourceType
		level       PermissionLevel
		want        bool
	}{
		{"exact match", []string{"database:read"}, ResourceDatabase, PermissionRead, true},
		{"resource wildcard", []string{"database:*"}, ResourceDatabase, PermissionWrite, true},
		{"global wildcard", []string{"*"}, ResourceSystem, PermissionAdmin, true},
		{"wrong level", []string{"database:read"}, ResourceDatabase, PermissionWrite, false},
		{"wrong resource", []string{"database:read"}, ResourceNetwork, PermissionRead, false},
		{"no permissions", nil, ResourceDatabase, PermissionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &SecurityContext{Permissions: tt.permissions}
			if got := sc.HasPermission(tt.rt, tt.level); got != tt.want {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.rt, tt.level, got, tt.want)
			}
		})
	}
}

func TestAllowsResource(t *testing.T) {
	sc := &SecurityContext{
		AllowedResources: map[ResourceType]struct{}{
			ResourceEventBus: {},
		},
	}

	if !sc.AllowsResource(ResourceEventBus) {
		t.Error("expected eventbus to be allowed")
	}
	if sc.AllowsResource(ResourceSystem) {
		t.Error("expected system to be disallowed")
	}
}

func TestParseResourceType(t *testing.T) {
	if rt, err := ParseResourceType(" Database "); err != nil || rt != ResourceDatabase {
		t.Errorf("ParseResourceType = %v, %v", rt, err)
	}
	if _, err := ParseResourceType("gpu"); err == nil {
		t.Error("expected error for unknown resource type")
	}
}
