package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/clickpulse/pulse/pkg/config"
)

// RedisCache implements MetricsCache on a Redis backend
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed metrics cache
func NewRedisCache(cfg config.StorageConfig) (*RedisCache, error) {
	// Parse Redis URL or use default options
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	// Override with config values if provided
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB >= 0 {
		opts.DB = cfg.RedisDB
	}
	if cfg.RedisMaxRetries > 0 {
		opts.MaxRetries = cfg.RedisMaxRetries
	}
	if cfg.RedisPoolSize > 0 {
		opts.PoolSize = cfg.RedisPoolSize
	}

	// Set connection timeouts
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// SetCount stores a scalar count with a TTL
func (c *RedisCache) SetCount(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed for %s: %w", key, err)
	}
	return nil
}

// GetCount reads a scalar count; ok is false on a missing key
func (c *RedisCache) GetCount(ctx context.Context, key string) (int64, bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("redis get failed for %s: %w", key, err)
	}

	value, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		// Corrupt value; drop it rather than serving garbage
		c.client.Del(ctx, key)
		return 0, false, fmt.Errorf("non-integer count at %s: %w", key, err)
	}

	return value, true, nil
}

// ReplaceHash replaces the mapping at key with a TTL. The delete and rewrite
// are not transactional: readers during the gap see a missing key, which the
// query layer treats as "no data yet".
func (c *RedisCache) ReplaceHash(ctx context.Context, key string, fields map[string]int64, ttl time.Duration) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del failed for %s: %w", key, err)
	}

	if len(fields) == 0 {
		return nil
	}

	values := make(map[string]interface{}, len(fields))
	for field, count := range fields {
		values[field] = count
	}

	if err := c.client.HSet(ctx, key, values).Err(); err != nil {
		return fmt.Errorf("redis hset failed for %s: %w", key, err)
	}
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis expire failed for %s: %w", key, err)
	}

	return nil
}

// GetHash reads the full mapping at key
func (c *RedisCache) GetHash(ctx context.Context, key string) (map[string]int64, error) {
	entries, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed for %s: %w", key, err)
	}

	fields := make(map[string]int64, len(entries))
	for field, raw := range entries {
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-integer count at %s[%s]: %w", key, field, err)
		}
		fields[field] = count
	}

	return fields, nil
}

// ReplaceSet replaces the set at key with a TTL
func (c *RedisCache) ReplaceSet(ctx context.Context, key string, members []string, ttl time.Duration) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del failed for %s: %w", key, err)
	}

	if len(members) == 0 {
		return nil
	}

	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}

	if err := c.client.SAdd(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("redis sadd failed for %s: %w", key, err)
	}
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis expire failed for %s: %w", key, err)
	}

	return nil
}

// SetMembers reads the set at key
func (c *RedisCache) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers failed for %s: %w", key, err)
	}
	return members, nil
}

// ScanKeys returns all keys matching the glob pattern using SCAN
func (c *RedisCache) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan failed for pattern %s: %w", pattern, err)
	}

	return keys, nil
}

// Ping checks Redis connectivity
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
