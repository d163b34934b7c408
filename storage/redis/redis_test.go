package redis

import (
	"context"
	"testing"

	"github.com/ggoodman/weather-mcp-go/storage/storagetest"
	"github.com/redis/go-redis/v9"
)

func TestRedisStorage(t *testing.T) {
	// Skip test if Redis is not available
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   2, // Use separate DB for storage tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	// Clean up test data
	client.FlushDB(ctx)
	defer client.FlushDB(ctx)

	s, err := New(Config{Client: client, KeyPrefix: "weather-mcp-test:"})
	if err != nil {
		t.Fatalf("Failed to create Redis storage: %v", err)
	}
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() failed: %v", err)
	}
	storagetest.Run(t, s)
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without client")
	}
}
