package types

import (
	"time"
)

// AccessRequest asks the security manager whether one operation against one
// resource may proceed. Created fresh per check, never persisted.
type AccessRequest struct {
	Context      *SecurityContext `json:"-"`
	ResourceType ResourceType     `json:"resource_type"`
	ResourceID   string           `json:"resource_id"`
	Permission   PermissionLevel  `json:"permission"`
	Operation    string           `json:"operation"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
}

// MetadataString returns a string metadata value, empty when absent or not a
// string.
func (r *AccessRequest) MetadataString(key string) string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	if v, ok := r.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// AccessResult is the outcome of one access decision. Reason is set iff the
// request was denied; Constraints carries the merged effective ceilings iff
// it was allowed. Entry is always populated.
type AccessResult struct {
	Allowed     bool                 `json:"allowed"`
	Reason      string               `json:"reason,omitempty"`
	Constraints *ResourceConstraints `json:"constraints,omitempty"`
	Entry       *AuditEntry          `json:"audit_entry"`
}

// AuditEntry is the immutable record of one access decision.
type AuditEntry struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	ModuleID     string       `json:"module_id"`
	UserID       string       `json:"user_id,omitempty"`
	SessionID    string       `json:"session_id"`
	Operation    string       `json:"operation"`
	ResourceType ResourceType `json:"resource_type"`
	ResourceID   string       `json:"resource_id"`
	Allowed      bool         `json:"allowed"`
	Reason       string       `json:"reason,omitempty"`
}

// OperationReport is returned by the operation tracker when a tracked
// operation completes. Violations are reported, never enforced here.
type OperationReport struct {
	Violations       []string `json:"violations"`
	ExecutionTimeMs  int64    `json:"execution_time_ms"`
	MemoryUsageBytes int64    `json:"memory_usage_bytes"`
}

// Statistics summarizes manager activity since construction or the last
// counter reset.
type Statistics struct {
	TotalOperations    int64            `json:"total_operations"`
	DeniedOperations   int64            `json:"denied_operations"`
	SuccessRate        float64          `json:"success_rate"`
	ActiveOperations   int              `json:"active_operations"`
	PoliciesCount      int              `json:"policies_count"`
	OperationsByModule map[string]int64 `json:"operations_by_module"`
	ViolationsByType   map[string]int64 `json:"violations_by_type"`
}
