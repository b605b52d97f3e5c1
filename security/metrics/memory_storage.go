package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage stores metric snapshots in memory with thread safety.
type MemoryStorage struct {
	data        map[string][]*Snapshot // key: module_id:metric_type
	mu          sync.RWMutex
	total       int64
	lastCleanup time.Time
}

// NewMemoryStorage creates a new memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data:        make(map[string][]*Snapshot),
		lastCleanup: time.Now(),
	}
}

// StoreBatch stores multiple snapshots.
func (m *MemoryStorage) StoreBatch(snapshots []*Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, snapshot := range snapshots {
		if snapshot == nil || snapshot.ModuleID == "" || snapshot.MetricType == "" {
			continue // Skip invalid snapshots
		}

		key := m.buildKey(snapshot.ModuleID, snapshot.MetricType)
		m.data[key] = append(m.data[key], snapshot)
		m.total++
	}

	return nil
}

// Query returns snapshots matching the options, oldest first.
func (m *MemoryStorage) Query(opts *QueryOptions) ([]*Snapshot, error) {
	if opts == nil {
		return nil, fmt.Errorf("query options cannot be nil")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*Snapshot

	for key, snapshots := range m.data {
		moduleID, metricType := m.parseKey(key)

		if opts.ModuleID != "" && moduleID != opts.ModuleID {
			continue
		}
		if opts.MetricType != "" && metricType != opts.MetricType {
			continue
		}

		for _, snapshot := range snapshots {
			if m.isInTimeRange(snapshot, opts.Start, opts.End) {
				results = append(results, snapshot)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[len(results)-opts.Limit:]
	}

	return results, nil
}

// GetLatest retrieves the most recent snapshots for a module.
func (m *MemoryStorage) GetLatest(moduleID string, limit int) ([]*Snapshot, error) {
	if moduleID == "" {
		return nil, fmt.Errorf("module id cannot be empty")
	}

	if limit <= 0 {
		limit = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*Snapshot
	for key, snapshots := range m.data {
		keyModuleID, _ := m.parseKey(key)
		if keyModuleID == moduleID {
			all = append(all, snapshots...)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	if len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

// Cleanup removes snapshots recorded at or before the given time.
func (m *MemoryStorage) Cleanup(before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := int64(0)
	for key, snapshots := range m.data {
		var kept []*Snapshot
		for _, snapshot := range snapshots {
			if snapshot.Timestamp.After(before) {
				kept = append(kept, snapshot)
			} else {
				removed++
			}
		}

		if len(kept) == 0 {
			delete(m.data, key)
		} else {
			m.data[key] = kept
		}
	}

	m.total -= removed
	m.lastCleanup = time.Now()

	return nil
}

// GetStats returns storage statistics.
func (m *MemoryStorage) GetStats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"type":         "memory",
		"total":        m.total,
		"keys":         len(m.data),
		"last_cleanup": m.lastCleanup,
	}
}

func (m *MemoryStorage) buildKey(moduleID, metricType string) string {
	return fmt.Sprintf("%s:%s", moduleID, metricType)
}

func (m *MemoryStorage) parseKey(key string) (string, string) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

func (m *MemoryStorage) isInTimeRange(snapshot *Snapshot, start, end time.Time) bool {
	if !start.IsZero() && snapshot.Timestamp.Before(start) {
		return false
	}
	if !end.IsZero() && snapshot.Timestamp.After(end) {
		return false
	}
	return true
}
