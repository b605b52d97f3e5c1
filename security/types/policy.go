package types

import (
	"context"
)

// PolicyDecision is a single policy's verdict on an access request. A policy
// may propose tighter constraints alongside an allow; they are merged into
// the final result by the manager.
type PolicyDecision struct {
	Allowed     bool                 `json:"allowed"`
	Reason      string               `json:"reason,omitempty"`
	Constraints *ResourceConstraints `json:"constraints,omitempty"`
}

// Allow returns an allowing decision without constraint proposals.
func Allow() *PolicyDecision {
	return &PolicyDecision{Allowed: true}
}

// AllowWithConstraints returns an allowing decision proposing constraints.
func AllowWithConstraints(c *ResourceConstraints) *PolicyDecision {
	return &PolicyDecision{Allowed: true, Constraints: c}
}

// Deny returns a denying decision with a human-readable reason.
func Deny(reason string) *PolicyDecision {
	return &PolicyDecision{Allowed: false, Reason: reason}
}

// Policy is a pluggable predicate over access requests. Policies are
// evaluated sequentially in ascending Priority order (lower value first);
// evaluation stops at the first denial. Evaluate may perform I/O and may
// fail; an error (or panic) is converted by the manager into a denial and
// never propagates to the caller.
type Policy interface {
	// Name identifies the policy; registering a policy with an existing
	// name replaces it.
	Name() string

	// Priority orders the pipeline; lower values are evaluated first.
	Priority() int

	// Evaluate decides whether the request may proceed.
	Evaluate(ctx context.Context, req *AccessRequest) (*PolicyDecision, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc struct {
	PolicyName     string
	PolicyPriority int
	Fn             func(ctx context.Context, req *AccessRequest) (*PolicyDecision, error)
}

func (p *PolicyFunc) Name() string  { return p.PolicyName }
func (p *PolicyFunc) Priority() int { return p.PolicyPriority }

func (p *PolicyFunc) Evaluate(ctx context.Context, req *AccessRequest) (*PolicyDecision, error) {
	return p.Fn(ctx, req)
}
