// Package types defines the data model shared by the resource-governance
// components: resource and permission enums, security contexts, runtime
// constraints, access requests/results, audit entries and the policy
// contract.
package types

import (
	"fmt"
	"strings"
)

// ResourceType identifies a governed capability category.
type ResourceType string

const (
	ResourceDatabase    ResourceType = "database"
	ResourceFileSystem  ResourceType = "filesystem"
	ResourceNetwork     ResourceType = "network"
	ResourceEnvironment ResourceType = "environment"
	ResourceContainer   ResourceType = "container"
	ResourceEventBus    ResourceType = "eventbus"
	ResourceModule      ResourceType = "module"
	ResourceSystem      ResourceType = "system"
)

// AllResourceTypes lists every governed resource type.
var AllResourceTypes = []ResourceType{
	ResourceDatabase,
	ResourceFileSystem,
	ResourceNetwork,
	ResourceEnvironment,
	ResourceContainer,
	ResourceEventBus,
	ResourceModule,
	ResourceSystem,
}

// Valid reports whether the resource type is one of the governed categories.
func (rt ResourceType) Valid() bool {
	switch rt {
	case ResourceDatabase, ResourceFileSystem, ResourceNetwork, ResourceEnvironment,
		ResourceContainer, ResourceEventBus, ResourceModule, ResourceSystem:
		return true
	}
	return false
}

func (rt ResourceType) String() string {
	return string(rt)
}

// ParseResourceType parses a resource type from its string form.
func ParseResourceType(s string) (ResourceType, error) {
	rt := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	if !rt.Valid() {
		return "", fmt.Errorf("unknown resource type: %q", s)
	}
	return rt, nil
}

// PermissionLevel is the action category requested against a resource,
// ordered by privilege.
type PermissionLevel string

const (
	PermissionRead    PermissionLevel = "read"
	PermissionWrite   PermissionLevel = "write"
	PermissionExecute PermissionLevel = "execute"
	PermissionAdmin   PermissionLevel = "admin"
)

// Valid reports whether the permission level is recognized.
func (pl PermissionLevel) Valid() bool {
	switch pl {
	case PermissionRead, PermissionWrite, PermissionExecute, PermissionAdmin:
		return true
	}
	return false
}

func (pl PermissionLevel) String() string {
	return string(pl)
}

// rank orders permission levels by privilege.
func (pl PermissionLevel) rank() int {
	switch pl {
	case PermissionRead:
		return 0
	case PermissionWrite:
		return 1
	case PermissionExecute:
		return 2
	case PermissionAdmin:
		return 3
	}
	return -1
}

// AtLeast reports whether pl grants at least the privilege of other.
func (pl PermissionLevel) AtLeast(other PermissionLevel) bool {
	return pl.rank() >= other.rank()
}

// Priority is a module's trust tier.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether the priority is a known tier.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}
