//go:build integration

package cursor

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestRedisStore_Integration_RoundTrip(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	testRedisStoreRoundTrip(t, context.Background(), NewRedisStore(client, 0))
}

func TestRedisStore_Integration_ResumeAcrossStores(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()
	ctx := context.Background()

	first := NewRedisStore(client, 0)
	c := New(testKey)
	c.Advance("tok-7")
	if err := first.Save(ctx, c); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// A second process sharing the Redis instance resumes from the same token.
	second := NewRedisStore(client, 0)
	resumed, err := LoadOrNew(ctx, second, testKey)
	if err != nil {
		t.Fatalf("LoadOrNew() failed: %v", err)
	}
	if resumed.Token != "tok-7" {
		t.Errorf("Token = %q, want %q", resumed.Token, "tok-7")
	}
}
