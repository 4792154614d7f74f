// Package cache holds the redis-backed helpers: a reference-name cache used
// by filter validation and the advisory lock that keeps sync runs exclusive.
// Every type degrades to a no-op when built without a redis client, so the
// service runs fine with caching disabled.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReferenceCache caches reference-table name sets (genres, categories,
// statuses, ratings) so filter validation does not hit the store on every
// list request.
type ReferenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReferenceCache wraps a redis client. A nil client disables caching.
func NewReferenceCache(client *redis.Client, ttl time.Duration) *ReferenceCache {
	return &ReferenceCache{client: client, ttl: ttl}
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func (c *ReferenceCache) key(table string) string {
	return fmt.Sprintf("reference:names:%s", table)
}

// GetNames returns the cached name set for a reference table, or nil on a
// miss or with caching disabled.
func (c *ReferenceCache) GetNames(ctx context.Context, table string) ([]string, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	names, err := c.client.SMembers(ctx, c.key(table)).Result()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	return names, nil
}

// SetNames replaces the cached name set for a reference table.
func (c *ReferenceCache) SetNames(ctx context.Context, table string, names []string) error {
	if c == nil || c.client == nil || len(names) == 0 {
		return nil
	}
	key := c.key(table)
	members := make([]any, len(names))
	for i, n := range names {
		members[i] = n
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops the cached name sets. Called after a sync run so the next
// validation sees fresh reference names.
func (c *ReferenceCache) Invalidate(ctx context.Context, tables ...string) error {
	if c == nil || c.client == nil {
		return nil
	}
	keys := make([]string, len(tables))
	for i, t := range tables {
		keys[i] = c.key(t)
	}
	return c.client.Del(ctx, keys...).Err()
}
