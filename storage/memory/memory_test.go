package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ggoodman/weather-mcp-go/storage"
	"github.com/ggoodman/weather-mcp-go/storage/storagetest"
)

func TestNew(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("New(0) should fail")
	}
	s, err := New(100)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()
}

func TestMemoryStorage(t *testing.T) {
	s, err := New(100)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()
	storagetest.Run(t, s)
}

func TestEviction(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"))
	_ = s.Set(ctx, "b", []byte("2"))
	_, _ = s.Get(ctx, "a") // a is now most recently used
	_ = s.Set(ctx, "c", []byte("3"))

	if item, _ := s.Get(ctx, "b"); item != nil {
		t.Fatal("least recently used entry should have been evicted")
	}
	if item, _ := s.Get(ctx, "a"); item == nil {
		t.Fatal("recently used entry evicted")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d", s.Len())
	}
}

func TestPurgeExpired(t *testing.T) {
	s, err := New(10)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	_ = s.Set(ctx, "old", []byte("1"), storage.WithTTL(time.Millisecond))
	_ = s.Set(ctx, "new", []byte("2"))
	time.Sleep(5 * time.Millisecond)

	s.purgeExpired()
	if s.Len() != 1 {
		t.Fatalf("Len() after purge = %d", s.Len())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := New(1)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
}
