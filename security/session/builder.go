// Package session builds per-module security contexts from trust tiers.
// The tier-to-privilege mapping is deterministic and least-privilege by
// default: a tier only ever widens what a lower tier gets.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/modguard/modguard/security/types"
	"github.com/modguard/modguard/utils/nanoid"
)

// Tier ceilings. Only Critical reaches every resource type; Low is confined
// to the event bus and its own container.
const (
	criticalMaxExecutionMs = 60000
	highMaxExecutionMs     = 30000
	mediumMaxExecutionMs   = 15000
	lowMaxExecutionMs      = 5000
)

var tierConstraints = map[types.Priority]types.ResourceConstraints{
	types.PriorityCritical: {
		MaxExecutionTimeMs: criticalMaxExecutionMs,
		MaxMemoryBytes:     512 * 1024 * 1024,
		MaxNetworkCalls:    1000,
		MaxFileSystemOps:   1000,
	},
	types.PriorityHigh: {
		MaxExecutionTimeMs: highMaxExecutionMs,
		MaxMemoryBytes:     256 * 1024 * 1024,
		MaxNetworkCalls:    500,
		MaxFileSystemOps:   500,
	},
	types.PriorityMedium: {
		MaxExecutionTimeMs: mediumMaxExecutionMs,
		MaxMemoryBytes:     128 * 1024 * 1024,
		MaxNetworkCalls:    100,
		MaxFileSystemOps:   100,
	},
	types.PriorityLow: {
		MaxExecutionTimeMs: lowMaxExecutionMs,
		MaxMemoryBytes:     64 * 1024 * 1024,
		MaxNetworkCalls:    10,
		MaxFileSystemOps:   10,
	},
}

// Builder derives security contexts for module sessions.
type Builder struct{}

// NewBuilder creates a context builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build derives an immutable SecurityContext for one module session.
// Resource-type eligibility and permission-string possession are independent
// gates: a tier can expose a resource type the module still cannot act on
// without the matching permission string, and vice versa.
func (b *Builder) Build(moduleID string, priority types.Priority, permissions []string, userID string) (*types.SecurityContext, error) {
	if strings.TrimSpace(moduleID) == "" {
		return nil, fmt.Errorf("module id is required")
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("unknown priority: %q", priority)
	}

	sc := &types.SecurityContext{
		ModuleID:         moduleID,
		UserID:           userID,
		SessionID:        newSessionID(),
		Permissions:      append([]string(nil), permissions...),
		Priority:         priority,
		AllowedResources: allowedResources(priority, permissions),
		Constraints:      tierConstraints[priority].Clone(),
		CreatedAt:        time.Now(),
	}
	return sc, nil
}

// allowedResources maps a tier to the resource types it exposes.
func allowedResources(priority types.Priority, permissions []string) map[types.ResourceType]struct{} {
	allowed := make(map[types.ResourceType]struct{})

	switch priority {
	case types.PriorityCritical:
		for _, rt := range types.AllResourceTypes {
			allowed[rt] = struct{}{}
		}
	case types.PriorityHigh:
		allowed[types.ResourceDatabase] = struct{}{}
		allowed[types.ResourceFileSystem] = struct{}{}
		allowed[types.ResourceNetwork] = struct{}{}
		allowed[types.ResourceContainer] = struct{}{}
		allowed[types.ResourceEventBus] = struct{}{}
	case types.PriorityMedium:
		allowed[types.ResourceEventBus] = struct{}{}
		if hasPermissionFor(permissions, types.ResourceDatabase) {
			allowed[types.ResourceDatabase] = struct{}{}
		}
		if hasPermissionFor(permissions, types.ResourceNetwork) {
			allowed[types.ResourceNetwork] = struct{}{}
		}
	case types.PriorityLow:
		allowed[types.ResourceEventBus] = struct{}{}
		allowed[types.ResourceContainer] = struct{}{}
	}

	return allowed
}

// hasPermissionFor reports whether any permission string names the resource
// type ("database:read", "database:*") or is the global wildcard.
func hasPermissionFor(permissions []string, rt types.ResourceType) bool {
	prefix := string(rt) + ":"
	for _, p := range permissions {
		if p == "*" || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// newSessionID generates a session identifier unique across concurrent
// calls: a millisecond timestamp plus a random nanoid suffix.
func newSessionID() string {
	return fmt.Sprintf("sess-%d-%s", time.Now().UnixMilli(), nanoid.Alphanum(10))
}
