// Package ristretto provides a cost-bounded storage.Storage backed by
// github.com/dgraph-io/ristretto. Admission is probabilistic: a Set may be
// rejected under memory pressure, which is acceptable for a cache.
package ristretto

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/ggoodman/weather-mcp-go/storage"
)

// Config captures cache construction parameters.
type Config struct {
	// MaxCost bounds the total bytes held. Defaults to 64 MiB.
	MaxCost int64
	// NumCounters defaults to ten times the expected item count.
	NumCounters int64
	BufferItems int64
}

// Storage implements storage.Storage on a ristretto cache. Namespace deletes
// are served from a key index since ristretto cannot iterate its entries.
type Storage struct {
	cache *ristretto.Cache

	mu    sync.Mutex
	index map[string]map[string]struct{}

	closeOnce sync.Once
}

// New creates a ristretto-backed storage.
func New(cfg Config) (*Storage, error) {
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64OrDefault(cfg.NumCounters, 100_000),
		MaxCost:     int64OrDefault(cfg.MaxCost, 64<<20),
		BufferItems: int64OrDefault(cfg.BufferItems, 64),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &Storage{cache: rc, index: make(map[string]map[string]struct{})}, nil
}

func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Item, error) {
	options := storage.Apply(opts...)
	storageKey := buildKey(options.Namespace, key)

	v, ok := s.cache.Get(storageKey)
	if !ok {
		s.forget(options.Namespace, key)
		return nil, nil
	}
	item, ok := v.(*storage.Item)
	if !ok || item.IsExpired() {
		s.cache.Del(storageKey)
		s.forget(options.Namespace, key)
		return nil, nil
	}

	out := *item
	out.Data = append([]byte(nil), item.Data...)
	return &out, nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	options := storage.Apply(opts...)

	now := time.Now()
	item := &storage.Item{
		Data:      append([]byte(nil), data...),
		CreatedAt: now,
	}
	var ttl time.Duration
	if options.TTL != nil {
		ttl = *options.TTL
		expiresAt := now.Add(ttl)
		item.ExpiresAt = &expiresAt
	}

	s.mu.Lock()
	keys, ok := s.index[options.Namespace]
	if !ok {
		keys = make(map[string]struct{})
		s.index[options.Namespace] = keys
	}
	keys[key] = struct{}{}
	s.mu.Unlock()

	s.cache.SetWithTTL(buildKey(options.Namespace, key), item, int64(len(data)+1), ttl)
	// Sets are buffered; wait so the value is visible to the next Get.
	s.cache.Wait()
	return nil
}

func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	options := storage.Apply(opts...)

	if options.Key != nil {
		s.cache.Del(buildKey(options.Namespace, *options.Key))
		s.forget(options.Namespace, *options.Key)
		return nil
	}

	s.mu.Lock()
	keys := s.index[options.Namespace]
	delete(s.index, options.Namespace)
	s.mu.Unlock()

	for key := range keys {
		s.cache.Del(buildKey(options.Namespace, key))
	}
	return nil
}

// Close stops ristretto's background goroutines. The storage is unusable
// afterwards.
func (s *Storage) Close() error {
	s.closeOnce.Do(s.cache.Close)
	return nil
}

func (s *Storage) forget(namespace, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keys, ok := s.index[namespace]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(s.index, namespace)
		}
	}
}

func buildKey(namespace, key string) string {
	return namespace + ":" + key
}

func int64OrDefault(v, def int64) int64 {
	if v <= 0 {
		return def
	}
	return v
}

var _ storage.Storage = (*Storage)(nil)
