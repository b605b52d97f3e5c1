package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/modguard/modguard/security/types"
)

// Built-in pipeline priorities. Deployment-specific policies usually slot in
// after these.
const (
	PriorityResourceType    = 10
	PriorityPermission      = 20
	PriorityModuleIsolation = 30
	PriorityHostPath        = 40
)

// Built-in policy names.
const (
	NameResourceType    = "resource-type"
	NamePermission      = "permission"
	NameModuleIsolation = "module-isolation"
	NameHostPath        = "host-path"
)

// Defaults returns the built-in policies registered at manager construction,
// in pipeline order.
func Defaults() []types.Policy {
	return []types.Policy{
		NewResourceTypePolicy(),
		NewPermissionPolicy(),
		NewModuleIsolationPolicy(),
		NewHostPathPolicy(),
	}
}

// resourceDeniedReason is shared by the resource-type and module-isolation
// policies since both exclude a resource type outright.
func resourceDeniedReason(rt types.ResourceType) string {
	return fmt.Sprintf("Resource type '%s' not allowed", rt)
}

// ResourceTypePolicy denies requests for resource types the context's tier
// does not expose.
type ResourceTypePolicy struct{}

func NewResourceTypePolicy() *ResourceTypePolicy { return &ResourceTypePolicy{} }

func (p *ResourceTypePolicy) Name() string  { return NameResourceType }
func (p *ResourceTypePolicy) Priority() int { return PriorityResourceType }

func (p *ResourceTypePolicy) Evaluate(_ context.Context, req *types.AccessRequest) (*types.PolicyDecision, error) {
	if !req.Context.AllowsResource(req.ResourceType) {
		return types.Deny(resourceDeniedReason(req.ResourceType)), nil
	}
	return types.Allow(), nil
}

// PermissionPolicy denies requests the context holds no permission string
// for. Matching forms: "<resource>:<level>", "<resource>:*", "*".
type PermissionPolicy struct{}

func NewPermissionPolicy() *PermissionPolicy { return &PermissionPolicy{} }

func (p *PermissionPolicy) Name() string  { return NamePermission }
func (p *PermissionPolicy) Priority() int { return PriorityPermission }

func (p *PermissionPolicy) Evaluate(_ context.Context, req *types.AccessRequest) (*types.PolicyDecision, error) {
	if !req.Context.HasPermission(req.ResourceType, req.Permission) {
		return types.Deny(fmt.Sprintf("Permission '%s:%s' not granted", req.ResourceType, req.Permission)), nil
	}
	return types.Allow(), nil
}

// ModuleIsolationPolicy keeps Low-priority modules away from the system and
// other-module resource types regardless of any permission strings they were
// granted. Defense in depth against misconfigured permission assignment.
type ModuleIsolationPolicy struct{}

func NewModuleIsolationPolicy() *ModuleIsolationPolicy { return &ModuleIsolationPolicy{} }

func (p *ModuleIsolationPolicy) Name() string  { return NameModuleIsolation }
func (p *ModuleIsolationPolicy) Priority() int { return PriorityModuleIsolation }

func (p *ModuleIsolationPolicy) Evaluate(_ context.Context, req *types.AccessRequest) (*types.PolicyDecision, error) {
	if req.Context.Priority == types.PriorityLow {
		switch req.ResourceType {
		case types.ResourceSystem, types.ResourceModule:
			return types.Deny(resourceDeniedReason(req.ResourceType)), nil
		}
	}
	return types.Allow(), nil
}

// HostPathPolicy is the deployment slot: when the context constraints carry
// host or path allow-lists, network requests must name an allowed host and
// filesystem requests an allowed path prefix. Empty lists mean no
// restriction.
type HostPathPolicy struct{}

func NewHostPathPolicy() *HostPathPolicy { return &HostPathPolicy{} }

func (p *HostPathPolicy) Name() string  { return NameHostPath }
func (p *HostPathPolicy) Priority() int { return PriorityHostPath }

func (p *HostPathPolicy) Evaluate(_ context.Context, req *types.AccessRequest) (*types.PolicyDecision, error) {
	constraints := req.Context.Constraints

	if req.ResourceType == types.ResourceNetwork && len(constraints.AllowedHosts) > 0 {
		host := req.MetadataString("host")
		if host == "" {
			host = req.ResourceID
		}
		if !contains(constraints.AllowedHosts, host) {
			return types.Deny(fmt.Sprintf("Host '%s' not allowed", host)), nil
		}
	}

	if req.ResourceType == types.ResourceFileSystem && len(constraints.AllowedPaths) > 0 {
		path := req.MetadataString("path")
		if path == "" {
			path = req.ResourceID
		}
		if !hasPrefixIn(constraints.AllowedPaths, path) {
			return types.Deny(fmt.Sprintf("Path '%s' not allowed", path)), nil
		}
	}

	return types.Allow(), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func hasPrefixIn(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
