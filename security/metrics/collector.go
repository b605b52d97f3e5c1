package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modguard/modguard/logging/logger"
	"github.com/modguard/modguard/monitor"
)

// Collector records security decision metrics and batches them into storage.
type Collector struct {
	mu      sync.Mutex
	storage Storage
	enabled bool

	batchBuffer []*Snapshot
	batchSize   int
	lastFlush   time.Time
	flushTicker *time.Ticker
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewCollector creates a new metrics collector. A nil storage disables
// persistence but counters recorded through the manager still work.
func NewCollector(storage Storage, enabled bool) *Collector {
	return newCollector(storage, enabled, 30*time.Second)
}

func newCollector(storage Storage, enabled bool, flushInterval time.Duration) *Collector {
	c := &Collector{
		storage:   storage,
		enabled:   enabled,
		batchSize: 100,
		lastFlush: time.Now(),
		stopChan:  make(chan struct{}),
	}

	if enabled && storage != nil {
		c.flushTicker = time.NewTicker(flushInterval)
		c.wg.Add(1)
		go c.flushRoutine(c.stopChan)
	}

	return c
}

// NewCollectorWithMemoryStorage creates a collector backed by memory storage.
func NewCollectorWithMemoryStorage(enabled bool) *Collector {
	var storage Storage
	if enabled {
		storage = NewMemoryStorage()
	}
	return NewCollector(storage, enabled)
}

// UpgradeToRedisStorage swaps the backend to Redis, migrating any snapshots
// already held in memory storage.
func (c *Collector) UpgradeToRedisStorage(client *redis.Client, keyPrefix string, retention time.Duration) error {
	if client == nil {
		return fmt.Errorf("redis client cannot be nil")
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("redis connection test failed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	redisStorage := NewRedisStorage(client, keyPrefix, retention)

	if memStorage, ok := c.storage.(*MemoryStorage); ok {
		if err := migrateMemoryToRedis(memStorage, redisStorage); err != nil {
			return fmt.Errorf("failed to migrate data to Redis: %w", err)
		}
	}

	c.storage = redisStorage
	return nil
}

func migrateMemoryToRedis(mem *MemoryStorage, rs *RedisStorage) error {
	mem.mu.RLock()
	var all []*Snapshot
	for _, snapshots := range mem.data {
		all = append(all, snapshots...)
	}
	mem.mu.RUnlock()

	if len(all) == 0 {
		return nil
	}

	if err := rs.StoreBatch(all); err != nil {
		return err
	}

	logger.Infof(nil, "Migrated %d metric snapshots to Redis storage", len(all))
	return nil
}

// Stop flushes buffered snapshots and stops the background routine.
func (c *Collector) Stop() {
	c.mu.Lock()
	if c.stopChan != nil {
		close(c.stopChan)
		c.stopChan = nil
	}

	if c.flushTicker != nil {
		c.flushTicker.Stop()
	}

	c.flush()
	c.mu.Unlock()

	c.wg.Wait()
}

// IsEnabled returns whether metrics collection is enabled.
func (c *Collector) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Record stores one metric snapshot for a module.
func (c *Collector) Record(moduleID, metricType string, value float64, labels map[string]string) {
	if moduleID == "" || metricType == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	c.storeSnapshot(&Snapshot{
		ModuleID:   moduleID,
		MetricType: metricType,
		Value:      value,
		Labels:     labels,
		Timestamp:  time.Now(),
	})
}

// AccessDecision records an access check outcome plus its latency.
func (c *Collector) AccessDecision(moduleID string, allowed bool, latency time.Duration) {
	metricType := TypeAccessAllowed
	if !allowed {
		metricType = TypeAccessDenied
	}

	c.Record(moduleID, metricType, 1, nil)
	c.Record(moduleID, TypeDecisionLatencyUs, float64(latency.Microseconds()), nil)
}

// RateLimited records a rate limit rejection.
func (c *Collector) RateLimited(moduleID, operation string) {
	c.Record(moduleID, TypeRateLimited, 1, map[string]string{"operation": operation})
}

// OperationViolation records one constraint violation detected at operation end.
func (c *Collector) OperationViolation(moduleID, violation string) {
	c.Record(moduleID, TypeOperationViolation, 1, map[string]string{"violation": violation})
}

// Query returns stored snapshots matching the options.
func (c *Collector) Query(opts *QueryOptions) ([]*Snapshot, error) {
	if c.storage == nil {
		return nil, fmt.Errorf("storage not configured")
	}
	if opts == nil {
		return nil, fmt.Errorf("query options cannot be nil")
	}

	c.mu.Lock()
	c.flush()
	c.mu.Unlock()

	return c.storage.Query(opts)
}

// GetLatest retrieves the latest snapshots for a module.
func (c *Collector) GetLatest(moduleID string, limit int) ([]*Snapshot, error) {
	if c.storage == nil {
		return nil, fmt.Errorf("storage not configured")
	}
	if moduleID == "" {
		return nil, fmt.Errorf("module id cannot be empty")
	}

	c.mu.Lock()
	c.flush()
	c.mu.Unlock()

	return c.storage.GetLatest(moduleID, limit)
}

// GetStorageStats returns storage statistics.
func (c *Collector) GetStorageStats() map[string]any {
	if c.storage == nil {
		return map[string]any{"status": "not_configured"}
	}
	return c.storage.GetStats()
}

// CleanupOldMetrics removes snapshots older than maxAge.
func (c *Collector) CleanupOldMetrics(maxAge time.Duration) error {
	if c.storage == nil {
		return fmt.Errorf("storage not configured")
	}
	return c.storage.Cleanup(time.Now().Add(-maxAge))
}

func (c *Collector) storeSnapshot(snapshot *Snapshot) {
	if c.storage == nil || snapshot == nil {
		return
	}

	c.batchBuffer = append(c.batchBuffer, snapshot)

	if len(c.batchBuffer) >= c.batchSize {
		c.flush()
	}
}

func (c *Collector) flush() {
	if c.storage == nil || len(c.batchBuffer) == 0 {
		return
	}

	if err := c.storage.StoreBatch(c.batchBuffer); err != nil {
		logger.Errorf(nil, "Failed to flush metrics batch: %v", err)
	}

	c.batchBuffer = c.batchBuffer[:0]
	c.lastFlush = time.Now()
}

// flushRoutine must not read c.stopChan: Stop nils the field after closing it.
func (c *Collector) flushRoutine(stop <-chan struct{}) {
	defer c.wg.Done()

	for {
		select {
		case <-c.flushTicker.C:
			c.mu.Lock()
			c.recordRuntimeSample()
			c.flush()
			c.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// recordRuntimeSample stores process-level snapshots alongside the decision
// metrics so operators can correlate denials with runtime pressure.
func (c *Collector) recordRuntimeSample() {
	sample := monitor.Read()
	now := time.Now()

	c.storeSnapshot(&Snapshot{
		ModuleID:   "system",
		MetricType: "heap_alloc_bytes",
		Value:      float64(sample.HeapAlloc),
		Timestamp:  now,
	})
	c.storeSnapshot(&Snapshot{
		ModuleID:   "system",
		MetricType: "goroutine_count",
		Value:      float64(sample.Goroutines),
		Timestamp:  now,
	})
}
