// Package policy implements the priority-ordered policy pipeline and the
// built-in governance policies.
package policy

import (
	"sort"
	"sync"

	"github.com/modguard/modguard/security/types"
)

// Registry holds the policy pipeline sorted ascending by numeric priority.
// Lower priority value means earlier evaluation and therefore higher
// authority: once an earlier policy denies, later ones never run.
type Registry struct {
	mu       sync.RWMutex
	policies []types.Policy
}

// NewRegistry creates an empty policy registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a policy. Re-adding a name replaces the existing policy
// rather than appending a duplicate. The pipeline is re-sorted on every
// mutation.
func (r *Registry) Add(p types.Policy) {
	if p == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := false
	for i, existing := range r.policies {
		if existing.Name() == p.Name() {
			r.policies[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		r.policies = append(r.policies, p)
	}

	sort.SliceStable(r.policies, func(i, j int) bool {
		return r.policies[i].Priority() < r.policies[j].Priority()
	})
}

// Remove unregisters a policy by name and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.policies {
		if p.Name() == name {
			r.policies = append(r.policies[:i], r.policies[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a registered policy by name.
func (r *Registry) Get(name string) (types.Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.policies {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Snapshot returns the pipeline in evaluation order. The returned slice is a
// copy; mutating it does not affect the registry.
func (r *Registry) Snapshot() []types.Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Policy, len(r.policies))
	copy(out, r.policies)
	return out
}

// Len returns the number of registered policies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.policies)
}
