package types

// RateLimit configures a fixed-window call budget for one operation.
type RateLimit struct {
	Operation string `json:"operation"`
	MaxCalls  int64  `json:"max_calls"`
	WindowMs  int64  `json:"window_ms"`
}

// ResourceConstraints are runtime ceilings and allow-lists attached to a
// security context or proposed by a policy. A zero numeric field means the
// ceiling is unset.
type ResourceConstraints struct {
	MaxExecutionTimeMs int64       `json:"max_execution_time_ms"`
	MaxMemoryBytes     int64       `json:"max_memory_bytes"`
	MaxNetworkCalls    int64       `json:"max_network_calls"`
	MaxFileSystemOps   int64       `json:"max_file_system_ops"`
	AllowedHosts       []string    `json:"allowed_hosts,omitempty"`
	AllowedPaths       []string    `json:"allowed_paths,omitempty"`
	RateLimits         []RateLimit `json:"rate_limits,omitempty"`
}

// minCeiling merges two ceilings where zero means unset.
func minCeiling(a, b int64) int64 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// intersect returns the intersection of two allow-lists. An empty list means
// "no restriction", so the non-empty side wins when only one is populated.
func intersect(a, b []string) []string {
	if len(a) == 0 {
		return append([]string(nil), b...)
	}
	if len(b) == 0 {
		return append([]string(nil), a...)
	}

	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}

	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Merge combines two constraint sets, most restrictive wins: numeric ceilings
// take the minimum of the values present, allow-lists are intersected when
// both sides enumerate one, and rate limits are concatenated (the limiter
// consults the last entry for a given operation).
func (c ResourceConstraints) Merge(other ResourceConstraints) ResourceConstraints {
	merged := ResourceConstraints{
		MaxExecutionTimeMs: minCeiling(c.MaxExecutionTimeMs, other.MaxExecutionTimeMs),
		MaxMemoryBytes:     minCeiling(c.MaxMemoryBytes, other.MaxMemoryBytes),
		MaxNetworkCalls:    minCeiling(c.MaxNetworkCalls, other.MaxNetworkCalls),
		MaxFileSystemOps:   minCeiling(c.MaxFileSystemOps, other.MaxFileSystemOps),
		AllowedHosts:       intersect(c.AllowedHosts, other.AllowedHosts),
		AllowedPaths:       intersect(c.AllowedPaths, other.AllowedPaths),
	}

	if len(c.RateLimits) > 0 || len(other.RateLimits) > 0 {
		merged.RateLimits = make([]RateLimit, 0, len(c.RateLimits)+len(other.RateLimits))
		merged.RateLimits = append(merged.RateLimits, c.RateLimits...)
		merged.RateLimits = append(merged.RateLimits, other.RateLimits...)
	}

	return merged
}

// RateLimitFor returns the effective rate limit for an operation. Later
// entries override earlier ones for the same operation name.
func (c ResourceConstraints) RateLimitFor(operation string) (RateLimit, bool) {
	var (
		found bool
		rl    RateLimit
	)
	for _, candidate := range c.RateLimits {
		if candidate.Operation == operation {
			rl = candidate
			found = true
		}
	}
	return rl, found
}

// Clone returns a deep copy of the constraints.
func (c ResourceConstraints) Clone() ResourceConstraints {
	clone := c
	clone.AllowedHosts = append([]string(nil), c.AllowedHosts...)
	clone.AllowedPaths = append([]string(nil), c.AllowedPaths...)
	clone.RateLimits = append([]RateLimit(nil), c.RateLimits...)
	return clone
}
