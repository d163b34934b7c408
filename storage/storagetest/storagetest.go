// Package storagetest holds the behavior every storage.Storage backend must
// share. Backend test files call Run against a fresh instance.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/ggoodman/weather-mcp-go/storage"
)

// Run exercises s. The backend must start empty.
func Run(t *testing.T, s storage.Storage) {
	t.Helper()
	t.Run("SetAndGet", func(t *testing.T) { testSetAndGet(t, s) })
	t.Run("GetNonExistent", func(t *testing.T) { testGetNonExistent(t, s) })
	t.Run("TTL", func(t *testing.T) { testTTL(t, s) })
	t.Run("Namespaces", func(t *testing.T) { testNamespaces(t, s) })
	t.Run("DeleteKey", func(t *testing.T) { testDeleteKey(t, s) })
	t.Run("DeleteNamespace", func(t *testing.T) { testDeleteNamespace(t, s) })
}

func testSetAndGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	data := []byte("report for Oslo")
	if err := s.Set(ctx, "oslo", data); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	// The backend must not alias the caller's slice.
	data[0] = 'X'

	item, err := s.Get(ctx, "oslo")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item == nil {
		t.Fatal("Get() returned nil item")
	}
	if string(item.Data) != "report for Oslo" {
		t.Fatalf("Get() data = %q", item.Data)
	}
	if item.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set")
	}
	if item.ExpiresAt != nil {
		t.Fatal("ExpiresAt set without TTL")
	}
}

func testGetNonExistent(t *testing.T, s storage.Storage) {
	item, err := s.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item, got %+v", item)
	}
}

func testTTL(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	if err := s.Set(ctx, "short", []byte("x"), storage.WithTTL(50*time.Millisecond)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	item, err := s.Get(ctx, "short")
	if err != nil || item == nil {
		t.Fatalf("Get() before expiry = %v, %v", item, err)
	}
	if item.ExpiresAt == nil {
		t.Fatal("ExpiresAt not set")
	}

	time.Sleep(120 * time.Millisecond)

	item, err = s.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item != nil {
		t.Fatalf("expected expired item to be gone, got %q", item.Data)
	}
}

func testNamespaces(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("a"), storage.WithNamespace("one")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("b"), storage.WithNamespace("two")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	for ns, want := range map[string]string{"one": "a", "two": "b"} {
		item, err := s.Get(ctx, "k", storage.WithNamespace(ns))
		if err != nil || item == nil || string(item.Data) != want {
			t.Fatalf("namespace %s: item=%v err=%v", ns, item, err)
		}
	}
	if item, _ := s.Get(ctx, "k"); item != nil {
		t.Fatalf("default namespace leaked: %q", item.Data)
	}
}

func testDeleteKey(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	_ = s.Set(ctx, "gone", []byte("1"))
	_ = s.Set(ctx, "kept", []byte("2"))
	if err := s.Delete(ctx, storage.WithKey("gone")); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if item, _ := s.Get(ctx, "gone"); item != nil {
		t.Fatal("deleted key still present")
	}
	if item, _ := s.Get(ctx, "kept"); item == nil {
		t.Fatal("unrelated key removed")
	}
}

func testDeleteNamespace(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"), storage.WithNamespace("wipe"))
	_ = s.Set(ctx, "b", []byte("2"), storage.WithNamespace("wipe"))
	_ = s.Set(ctx, "a", []byte("3"), storage.WithNamespace("keep"))
	if err := s.Delete(ctx, storage.WithNamespace("wipe")); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if item, _ := s.Get(ctx, k, storage.WithNamespace("wipe")); item != nil {
			t.Fatalf("key %s survived namespace delete", k)
		}
	}
	if item, _ := s.Get(ctx, "a", storage.WithNamespace("keep")); item == nil {
		t.Fatal("other namespace was removed")
	}
}
