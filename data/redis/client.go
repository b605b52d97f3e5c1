package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	dc "github.com/modguard/modguard/data/config"
)

// NewClient creates a redis client from config and verifies connectivity.
func NewClient(cfg *dc.Redis) (*redis.Client, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection test failed: %w", err)
	}

	return client, nil
}
