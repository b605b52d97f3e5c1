package types

import (
	"reflect"
	"testing"
)

func TestMergeNumericMinimum(t *testing.T) {
	base := ResourceConstraints{
		MaxExecutionTimeMs: 15000,
		MaxMemoryBytes:     256 * 1024 * 1024,
		MaxNetworkCalls:    100,
		MaxFileSystemOps:   100,
	}
	proposed := ResourceConstraints{
		MaxExecutionTimeMs: 5000,
		MaxNetworkCalls:    500,
	}

	merged := base.Merge(proposed)

	if merged.MaxExecutionTimeMs != 5000 {
		t.Errorf("MaxExecutionTimeMs = %d, want 5000", merged.MaxExecutionTimeMs)
	}
	if merged.MaxNetworkCalls != 100 {
		t.Errorf("MaxNetworkCalls = %d, want 100", merged.MaxNetworkCalls)
	}
	// Zero on one side means unset, the other side's ceiling survives.
	if merged.MaxMemoryBytes != 256*1024*1024 {
		t.Errorf("MaxMemoryBytes = %d, want %d", merged.MaxMemoryBytes, 256*1024*1024)
	}
	if merged.MaxFileSystemOps != 100 {
		t.Errorf("MaxFileSystemOps = %d, want 100", merged.MaxFileSystemOps)
	}
}

func TestMergeLists(t *testing.T) {
	tests := []struct {
		name  string
		a     []string
		b     []string
		want  []string
	}{
		{"both non-empty intersect", []string{"a.com", "b.com"}, []string{"b.com", "c.com"}, []string{"b.com"}},
		{"empty side is unrestricted", nil, []string{"x.com"}, []string{"x.com"}},
		{"other empty side", []string{"x.com"}, nil, []string{"x.com"}},
		{"disjoint lists intersect to empty", []string{"a.com"}, []string{"b.com"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := ResourceConstraints{AllowedHosts: tt.a}.Merge(ResourceConstraints{AllowedHosts: tt.b})
			if len(merged.AllowedHosts) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(merged.AllowedHosts, tt.want) {
				t.Errorf("AllowedHosts = %v, want %v", merged.AllowedHosts, tt.want)
			}
		})
	}
}

func TestMergeRateLimitsConcatenated(t *testing.T) {
	a := ResourceConstraints{RateLimits: []RateLimit{{Operation: "query", MaxCalls: 10, WindowMs: 1000}}}
	b := ResourceConstraints{RateLimits: []RateLimit{{Operation: "query", MaxCalls: 5, WindowMs: 2000}}}

	merged := a.Merge(b)
	if len(merged.RateLimits) != 2 {
		t.Fatalf("RateLimits length = %d, want 2 (concatenated, not deduplicated)", len(merged.RateLimits))
	}

	// Last write for a given operation wins when consulted.
	rl, ok := merged.RateLimitFor("query")
	if !ok {
		t.Fatal("RateLimitFor(query) not found")
	}
	if rl.MaxCalls != 5 || rl.WindowMs != 2000 {
		t.Errorf("RateLimitFor(query) = %+v, want last entry {5 2000}", rl)
	}
}

func TestRateLimitForUnknownOperation(t *testing.T) {
	c := ResourceConstraints{RateLimits: []RateLimit{{Operation: "query", MaxCalls: 10, WindowMs: 1000}}}
	if _, ok := c.RateLimitFor("write"); ok {
		t.Error("expected no rate limit for unconfigured operation")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := ResourceConstraints{
		AllowedHosts: []string{"a.com"},
		RateLimits:   []RateLimit{{Operation: "query", MaxCalls: 1, WindowMs: 100}},
	}
	clone := orig.Clone()
	clone.AllowedHosts[0] = "mutated"
	clone.RateLimits[0].MaxCalls = 99

	if orig.AllowedHosts[0] != "a.com" {
		t.Error("clone shares AllowedHosts backing array")
	}
	if orig.RateLimits[0].MaxCalls != 1 {
		t.Error("clone shares RateLimits backing array")
	}
}
