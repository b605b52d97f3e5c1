package types

import (
	"time"
)

// SecurityContext is the immutable per-session identity and privilege
// envelope of a module. It is built once when a module session begins and
// discarded when the session ends; nothing mutates it in between.
type SecurityContext struct {
	ModuleID         string                        `json:"module_id"`
	UserID           string                        `json:"user_id,omitempty"`
	SessionID        string                        `json:"session_id"`
	Permissions      []string                      `json:"permissions"`
	Priority         Priority                      `json:"priority"`
	AllowedResources map[ResourceType]struct{}     `json:"-"`
	Constraints      ResourceConstraints           `json:"constraints"`
	CreatedAt        time.Time                     `json:"created_at"`
}

// AllowsResource reports whether the context's tier exposes the resource type.
func (sc *SecurityContext) AllowsResource(rt ResourceType) bool {
	if sc == nil {
		return false
	}
	_, ok := sc.AllowedResources[rt]
	return ok
}

// HasPermission reports whether the context holds a permission string
// matching "<resource>:<level>", "<resource>:*" or the global "*".
func (sc *SecurityContext) HasPermission(rt ResourceType, level PermissionLevel) bool {
	if sc == nil {
		return false
	}

	exact := string(rt) + ":" + string(level)
	wildcard := string(rt) + ":*"

	for _, p := range sc.Permissions {
		switch p {
		case "*", exact, wildcard:
			return true
		}
	}
	return false
}

// ResourceTypeList returns the allowed resource types in stable enum order,
// mainly for logging and serialization.
func (sc *SecurityContext) ResourceTypeList() []ResourceType {
	if sc == nil {
		return nil
	}
	out := make([]ResourceType, 0, len(sc.AllowedResources))
	for _, rt := range AllResourceTypes {
		if _, ok := sc.AllowedResources[rt]; ok {
			out = append(out, rt)
		}
	}
	return out
}
