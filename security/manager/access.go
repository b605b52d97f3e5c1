package manager

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/modguard/modguard/ctxutil"
	"github.com/modguard/modguard/logging/logger"
	"github.com/modguard/modguard/security/event"
	"github.com/modguard/modguard/security/types"
	"github.com/modguard/modguard/utils/nanoid"
)

const missingContextReason = "Invalid access request: missing security context"

// CheckAccess decides whether one operation against one resource may
// proceed. It is a pure decision function plus logging: no resource is
// touched here. Exactly one audit entry is appended per call, whatever
// branch is taken, and an internal failure is always surfaced as a denial.
func (m *Manager) CheckAccess(ctx context.Context, req *types.AccessRequest) *types.AccessResult {
	start := time.Now()

	ctx = ctxutil.EnsureTraceID(ctx)
	if req != nil && req.Context != nil {
		ctx = ctxutil.WithModuleID(ctx, req.Context.ModuleID)
		ctx = ctxutil.WithSessionID(ctx, req.Context.SessionID)
	}

	ctx, span := m.tracer.Start(ctx, "security.check_access")
	defer span.End()

	if req == nil || req.Context == nil {
		result := &types.AccessResult{Allowed: false, Reason: missingContextReason}
		m.finish(ctx, span, req, result, start)
		return result
	}

	span.SetAttributes(
		attribute.String("module.id", req.Context.ModuleID),
		attribute.String("resource.type", string(req.ResourceType)),
		attribute.String("operation", req.Operation),
	)

	result := m.evaluatePipeline(ctx, req)
	m.finish(ctx, span, req, result, start)
	return result
}

// evaluatePipeline runs every registered policy in ascending priority order,
// stopping at the first denial. Constraints proposed by passing policies are
// merged into the context's own ceilings.
func (m *Manager) evaluatePipeline(ctx context.Context, req *types.AccessRequest) *types.AccessResult {
	merged := req.Context.Constraints.Clone()

	for _, p := range m.registry.Snapshot() {
		decision, err := m.evaluatePolicy(ctx, p, req)
		if err != nil {
			logger.Errorf(ctx, "policy %s evaluation failed: %v", p.Name(), err)
			return &types.AccessResult{
				Allowed: false,
				Reason:  fmt.Sprintf("Security policy evaluation failed: %s", p.Name()),
			}
		}

		if !decision.Allowed {
			return &types.AccessResult{Allowed: false, Reason: decision.Reason}
		}

		if decision.Constraints != nil {
			merged = merged.Merge(*decision.Constraints)
		}
	}

	return &types.AccessResult{Allowed: true, Constraints: &merged}
}

// evaluatePolicy runs one policy through its circuit breaker with a panic
// guard. Denials are not breaker failures; only errors and panics are.
func (m *Manager) evaluatePolicy(ctx context.Context, p types.Policy, req *types.AccessRequest) (*types.PolicyDecision, error) {
	run := func() (any, error) {
		return safeEvaluate(ctx, p, req)
	}

	cb := m.breakerFor(p.Name())
	if cb == nil {
		decision, err := safeEvaluate(ctx, p, req)
		return decision, err
	}

	res, err := cb.Execute(run)
	if err != nil {
		return nil, err
	}
	return res.(*types.PolicyDecision), nil
}

func safeEvaluate(ctx context.Context, p types.Policy, req *types.AccessRequest) (decision *types.PolicyDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = nil
			err = fmt.Errorf("policy panicked: %v", r)
		}
	}()

	decision, err = p.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	if decision == nil {
		return nil, fmt.Errorf("policy returned no decision")
	}
	return decision, nil
}

// finish records the audit entry, counters, metrics, event and trace
// attributes for one decision.
func (m *Manager) finish(ctx context.Context, span trace.Span, req *types.AccessRequest, result *types.AccessResult, start time.Time) {
	entry := &types.AuditEntry{
		ID:        nanoid.String(16),
		Timestamp: time.Now(),
		Allowed:   result.Allowed,
		Reason:    result.Reason,
	}

	if req != nil {
		entry.Operation = req.Operation
		entry.ResourceType = req.ResourceType
		entry.ResourceID = req.ResourceID
		if req.Context != nil {
			entry.ModuleID = req.Context.ModuleID
			entry.UserID = req.Context.UserID
			entry.SessionID = req.Context.SessionID
		}
	}

	result.Entry = entry
	m.auditLog.Append(entry)

	m.statsMu.Lock()
	m.totalOps++
	if entry.ModuleID != "" {
		m.opsByModule[entry.ModuleID]++
	}
	if !result.Allowed {
		m.deniedOps++
		m.violationsByType[result.Reason]++
	}
	m.statsMu.Unlock()

	m.collector.AccessDecision(entry.ModuleID, result.Allowed, time.Since(start))

	span.SetAttributes(attribute.Bool("access.allowed", result.Allowed))

	if result.Allowed {
		m.publish(event.TopicAccessAllowed, entry)
		logger.Debugf(ctx, "access allowed: module=%s resource=%s operation=%s",
			entry.ModuleID, entry.ResourceType, entry.Operation)
	} else {
		m.publish(event.TopicAccessDenied, entry)
		logger.Warnf(ctx, "access denied: module=%s resource=%s operation=%s reason=%q",
			entry.ModuleID, entry.ResourceType, entry.Operation, result.Reason)
	}
}

// CheckRateLimit consults the fixed-window limiter for one operation. An
// operation with no configured rate limit is always allowed.
func (m *Manager) CheckRateLimit(sc *types.SecurityContext, operation string) bool {
	if sc == nil {
		return true
	}

	rl, ok := sc.Constraints.RateLimitFor(operation)
	if !ok {
		return true
	}

	allowed := m.limiter.Allow(sc.ModuleID, operation, rl.MaxCalls, rl.WindowMs)
	if !allowed {
		logger.Warnf(nil, "rate limit exceeded: module=%s operation=%s max=%d window=%dms",
			sc.ModuleID, operation, rl.MaxCalls, rl.WindowMs)
		m.collector.RateLimited(sc.ModuleID, operation)
		m.publish(event.TopicRateLimitExceeded, map[string]any{
			"module_id": sc.ModuleID,
			"operation": operation,
			"max_calls": rl.MaxCalls,
			"window_ms": rl.WindowMs,
		})
	}

	return allowed
}
