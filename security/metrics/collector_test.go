package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// Stop must return even when the flush routine is mid-tick and contending
// for the collector mutex.
func TestCollectorStopUnderTickerContention(t *testing.T) {
	for i := 0; i < 20; i++ {
		c := newCollector(NewMemoryStorage(), true, time.Microsecond)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Record("mod-a", TypeAccessAllowed, 1, nil)
			}
		}()

		done := make(chan struct{})
		go func() {
			c.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("Stop did not return (iteration %d)", i)
		}
		wg.Wait()
	}
}

func TestCollectorStopIdempotent(t *testing.T) {
	c := NewCollectorWithMemoryStorage(true)
	c.Record("mod-a", TypeAccessDenied, 1, nil)
	c.Stop()
	c.Stop()

	got, err := c.Query(&QueryOptions{ModuleID: "mod-a"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d snapshots after Stop, want 1", len(got))
	}
}

func TestCollectorStopFlushesBuffer(t *testing.T) {
	storage := NewMemoryStorage()
	c := NewCollector(storage, true)

	for i := 0; i < 5; i++ {
		c.Record("mod-a", TypeDecisionLatencyUs, float64(i), map[string]string{"n": fmt.Sprint(i)})
	}
	c.Stop()

	got, err := storage.Query(&QueryOptions{ModuleID: "mod-a"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("flushed %d snapshots, want 5", len(got))
	}
}
