package cursor

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisStore persists cursors in Redis as JSON values.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A positive ttl expires
// cursors that were not saved for that long; zero keeps them forever.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Load implements Store. Returns ErrNotFound if the key doesn't exist.
func (s *RedisStore) Load(ctx context.Context, key Key) (*Cursor, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			storeOps.WithLabelValues("redis", "load", "miss").Inc()
			return nil, ErrNotFound
		}
		storeOps.WithLabelValues("redis", "load", "error").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		storeOps.WithLabelValues("redis", "load", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	storeOps.WithLabelValues("redis", "load", "hit").Inc()
	return &c, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, c *Cursor) error {
	if c == nil {
		return fmt.Errorf("cursor cannot be nil")
	}
	if c.Key == "" {
		return fmt.Errorf("cursor key is required")
	}

	data, err := json.Marshal(c)
	if err != nil {
		storeOps.WithLabelValues("redis", "save", "error").Inc()
		return fmt.Errorf("marshal cursor: %w", err)
	}

	if err := s.redis.Set(ctx, c.Key, data, s.ttl).Err(); err != nil {
		storeOps.WithLabelValues("redis", "save", "error").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	storeOps.WithLabelValues("redis", "save", "ok").Inc()
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		storeOps.WithLabelValues("redis", "delete", "error").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	storeOps.WithLabelValues("redis", "delete", "ok").Inc()
	return nil
}
