package manager

import (
	"github.com/modguard/modguard/logging/logger"
	"github.com/modguard/modguard/security/audit"
	"github.com/modguard/modguard/security/event"
	"github.com/modguard/modguard/security/types"
)

// StartOperation begins tracking one protected operation. Tracking is
// best-effort and never fails at the call site.
func (m *Manager) StartOperation(operationID string, sc *types.SecurityContext) {
	m.tracker.Start(operationID, sc)

	if m.tracker.Enabled() && sc != nil && operationID != "" {
		m.statsMu.Lock()
		m.opModules[operationID] = sc.ModuleID
		m.statsMu.Unlock()
	}
}

// TrackResourceUsage increments the usage counter for a resource type under
// an in-flight operation.
func (m *Manager) TrackResourceUsage(operationID string, rt types.ResourceType, amount int64) {
	m.tracker.Track(operationID, rt, amount)
}

// EndOperation completes a tracked operation and returns its report.
// Violations are reported, never enforced here; aborting work or unloading a
// module is the consumer's call.
func (m *Manager) EndOperation(operationID string) *types.OperationReport {
	report := m.tracker.End(operationID)

	m.statsMu.Lock()
	moduleID := m.opModules[operationID]
	delete(m.opModules, operationID)
	m.statsMu.Unlock()

	for _, violation := range report.Violations {
		logger.Warnf(nil, "operation violation: module=%s operation_id=%s %s",
			moduleID, operationID, violation)
		m.collector.OperationViolation(moduleID, violation)
		m.publish(event.TopicOperationViolation, map[string]any{
			"module_id":    moduleID,
			"operation_id": operationID,
			"violation":    violation,
		})
	}

	return report
}

// GetAuditLog returns audit entries matching the filter, in insertion order.
// A nil filter returns the full bounded buffer.
func (m *Manager) GetAuditLog(filter *audit.Filter) []*types.AuditEntry {
	return m.auditLog.Query(filter)
}

// ClearAuditLog empties the audit buffer.
func (m *Manager) ClearAuditLog() {
	m.auditLog.Clear()
}

// GetStatistics summarizes manager activity since construction.
func (m *Manager) GetStatistics() *types.Statistics {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()

	stats := &types.Statistics{
		TotalOperations:    m.totalOps,
		DeniedOperations:   m.deniedOps,
		SuccessRate:        1,
		ActiveOperations:   m.tracker.ActiveCount(),
		PoliciesCount:      m.registry.Len(),
		OperationsByModule: make(map[string]int64, len(m.opsByModule)),
		ViolationsByType:   make(map[string]int64, len(m.violationsByType)),
	}

	if m.totalOps > 0 {
		stats.SuccessRate = float64(m.totalOps-m.deniedOps) / float64(m.totalOps)
	}

	for k, v := range m.opsByModule {
		stats.OperationsByModule[k] = v
	}
	for k, v := range m.violationsByType {
		stats.ViolationsByType[k] = v
	}

	return stats
}
