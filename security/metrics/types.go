// Package metrics collects security decision metrics as point-in-time
// snapshots and persists them to a pluggable storage backend.
package metrics

import "time"

// Metric types recorded by the security manager.
const (
	TypeAccessAllowed      = "access_allowed"
	TypeAccessDenied       = "access_denied"
	TypeRateLimited        = "rate_limited"
	TypeOperationViolation = "operation_violation"
	TypeDecisionLatencyUs  = "decision_latency_us"
)

// Snapshot is one recorded metric sample.
type Snapshot struct {
	ModuleID   string            `json:"module_id"`
	MetricType string            `json:"metric_type"`
	Value      float64           `json:"value"`
	Labels     map[string]string `json:"labels,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// QueryOptions filters stored snapshots.
type QueryOptions struct {
	ModuleID   string    `json:"module_id,omitempty"`
	MetricType string    `json:"metric_type,omitempty"`
	Start      time.Time `json:"start,omitempty"`
	End        time.Time `json:"end,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}
