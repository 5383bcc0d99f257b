package cursor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis and skips when none is running.
// Container-backed coverage lives in redis_integration_test.go.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, 0)
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	testRedisStoreRoundTrip(t, ctx, store)
}

func TestRedisStore_TTL(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	c := New(testKey)
	c.Advance("tok-1")
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	ttl, err := client.TTL(ctx, testKey.String()).Result()
	if err != nil {
		t.Fatalf("TTL() failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}
}

func TestRedisStore_InvalidData(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	if err := client.Set(ctx, testKey.String(), "not json", 0).Err(); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	if _, err := store.Load(ctx, testKey); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("Load() err = %v, want ErrInvalidCursor", err)
	}
}

func testRedisStoreRoundTrip(t *testing.T, ctx context.Context, store *RedisStore) {
	t.Helper()

	if _, err := store.Load(ctx, testKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() on empty store: err = %v, want ErrNotFound", err)
	}

	c := New(testKey)
	c.Advance("tok-1")
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := store.Load(ctx, testKey)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Token != "tok-1" || loaded.Polls != 1 || loaded.Key != c.Key {
		t.Errorf("Load() = %+v, want %+v", loaded, c)
	}
	if !loaded.UpdatedAt.Equal(c.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", loaded.UpdatedAt, c.UpdatedAt)
	}

	if err := store.Delete(ctx, testKey); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Load(ctx, testKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Delete: err = %v, want ErrNotFound", err)
	}
}
