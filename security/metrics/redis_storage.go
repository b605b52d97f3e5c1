package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage stores metric snapshots in Redis sorted sets, scored by
// timestamp so time-range queries map onto ZRANGEBYSCORE.
type RedisStorage struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// NewRedisStorage creates a new Redis storage.
func NewRedisStorage(client *redis.Client, keyPrefix string, retention time.Duration) *RedisStorage {
	if keyPrefix == "" {
		keyPrefix = "modguard"
	}
	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
		retention: retention,
	}
}

// StoreBatch stores multiple snapshots in one pipeline.
func (r *RedisStorage) StoreBatch(snapshots []*Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	ctx := context.Background()
	pipe := r.client.Pipeline()

	keyGroups := make(map[string][]redis.Z)

	for _, snapshot := range snapshots {
		if snapshot == nil || snapshot.ModuleID == "" || snapshot.MetricType == "" {
			continue
		}

		data, err := json.Marshal(snapshot)
		if err != nil {
			continue // Skip snapshots that can't be marshalled
		}

		key := r.buildKey(snapshot.ModuleID, snapshot.MetricType)
		score := float64(snapshot.Timestamp.UnixMilli())
		keyGroups[key] = append(keyGroups[key], redis.Z{Score: score, Member: string(data)})
	}

	for key, members := range keyGroups {
		pipe.ZAdd(ctx, key, members...)
		if r.retention > 0 {
			pipe.Expire(ctx, key, r.retention)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store batch in Redis: %w", err)
	}

	return nil
}

// Query returns snapshots matching the options, oldest first.
func (r *RedisStorage) Query(opts *QueryOptions) ([]*Snapshot, error) {
	if opts == nil {
		return nil, fmt.Errorf("query options cannot be nil")
	}

	ctx := context.Background()

	keys, err := r.scanKeys(ctx, r.buildKeyPattern(opts.ModuleID, opts.MetricType))
	if err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}

	minScore := "-inf"
	maxScore := "+inf"
	if !opts.Start.IsZero() {
		minScore = strconv.FormatInt(opts.Start.UnixMilli(), 10)
	}
	if !opts.End.IsZero() {
		maxScore = strconv.FormatInt(opts.End.UnixMilli(), 10)
	}

	var results []*Snapshot

	for _, key := range keys {
		members, err := r.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
			Min: minScore,
			Max: maxScore,
		}).Result()
		if err != nil || len(members) == 0 {
			continue
		}

		for _, member := range members {
			var snapshot Snapshot
			if err := json.Unmarshal([]byte(member), &snapshot); err != nil {
				continue // Skip malformed entries
			}
			results = append(results, &snapshot)
		}
	}

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[len(results)-opts.Limit:]
	}

	return results, nil
}

// GetLatest retrieves the most recent snapshots for a module.
func (r *RedisStorage) GetLatest(moduleID string, limit int) ([]*Snapshot, error) {
	if moduleID == "" {
		return nil, fmt.Errorf("module id cannot be empty")
	}

	if limit <= 0 {
		limit = 10
	}

	ctx := context.Background()

	keys, err := r.scanKeys(ctx, r.buildKeyPattern(moduleID, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}

	var results []*Snapshot

	for _, key := range keys {
		members, err := r.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
		if err != nil {
			continue
		}

		for _, member := range members {
			var snapshot Snapshot
			if err := json.Unmarshal([]byte(member), &snapshot); err != nil {
				continue
			}
			results = append(results, &snapshot)
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Cleanup removes snapshots recorded at or before the given time.
func (r *RedisStorage) Cleanup(before time.Time) error {
	ctx := context.Background()

	keys, err := r.scanKeys(ctx, r.buildKeyPattern("", ""))
	if err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}

	max := strconv.FormatInt(before.UnixMilli(), 10)
	pipe := r.client.Pipeline()
	for _, key := range keys {
		pipe.ZRemRangeByScore(ctx, key, "-inf", max)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cleanup Redis metrics: %w", err)
	}

	return nil
}

// GetStats returns storage statistics.
func (r *RedisStorage) GetStats() map[string]any {
	ctx := context.Background()

	stats := map[string]any{
		"type":       "redis",
		"key_prefix": r.keyPrefix,
		"retention":  r.retention.String(),
	}

	keys, err := r.scanKeys(ctx, r.buildKeyPattern("", ""))
	if err != nil {
		stats["error"] = err.Error()
		return stats
	}

	total := int64(0)
	for _, key := range keys {
		count, err := r.client.ZCard(ctx, key).Result()
		if err == nil {
			total += count
		}
	}

	stats["keys"] = len(keys)
	stats["total"] = total

	return stats
}

func (r *RedisStorage) buildKey(moduleID, metricType string) string {
	return fmt.Sprintf("%s:metrics:%s:%s", r.keyPrefix, moduleID, metricType)
}

func (r *RedisStorage) buildKeyPattern(moduleID, metricType string) string {
	if moduleID == "" {
		moduleID = "*"
	}
	if metricType == "" {
		metricType = "*"
	}
	return fmt.Sprintf("%s:metrics:%s:%s", r.keyPrefix, moduleID, metricType)
}

// scanKeys uses SCAN instead of KEYS to avoid blocking Redis.
func (r *RedisStorage) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}

		keys = append(keys, batch...)
		cursor = next

		if cursor == 0 {
			break
		}
	}

	// Filter out keys with unexpected shapes
	prefix := r.keyPrefix + ":metrics:"
	filtered := keys[:0]
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			filtered = append(filtered, key)
		}
	}

	return filtered, nil
}
