package metrics

import "time"

// Storage persists metric snapshots.
type Storage interface {
	StoreBatch(snapshots []*Snapshot) error
	Query(opts *QueryOptions) ([]*Snapshot, error)
	GetLatest(moduleID string, limit int) ([]*Snapshot, error)
	Cleanup(before time.Time) error
	GetStats() map[string]any
}
