// Package monitor exposes process runtime measurements used by the
// operation tracker to account for memory consumption.
package monitor

import (
	"runtime"
	"sync/atomic"
)

// HeapAlloc returns the current heap allocation in bytes.
func HeapAlloc() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.HeapAlloc)
}

// Goroutines returns the current goroutine count.
func Goroutines() int {
	return runtime.NumGoroutine()
}

// Sample is a point-in-time runtime snapshot.
type Sample struct {
	HeapAlloc  int64  `json:"heap_alloc"`
	Goroutines int    `json:"goroutines"`
	GCCycles   uint32 `json:"gc_cycles"`
}

// Read collects a runtime sample.
func Read() Sample {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Sample{
		HeapAlloc:  int64(m.HeapAlloc),
		Goroutines: runtime.NumGoroutine(),
		GCCycles:   m.NumGC,
	}
}

// Peak tracks a monotonically increasing high-water mark.
type Peak struct {
	value atomic.Int64
}

// Observe records v if it exceeds the current peak.
func (p *Peak) Observe(v int64) {
	for {
		cur := p.value.Load()
		if v <= cur || p.value.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Value returns the current peak.
func (p *Peak) Value() int64 {
	return p.value.Load()
}
