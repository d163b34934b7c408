// Package memory provides an in-memory implementation of the storage interface
// using github.com/hashicorp/golang-lru/v2 for bounded caching with TTL support.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ggoodman/weather-mcp-go/storage"
	lru "github.com/hashicorp/golang-lru/v2"
)

const cleanupInterval = 5 * time.Minute

// Storage implements storage.Storage on a size-bounded LRU. Expired items
// are dropped lazily on Get and periodically in the background.
type Storage struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *storage.Item]

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a new in-memory storage holding at most maxItems entries.
func New(maxItems int) (*Storage, error) {
	cache, err := lru.New[string, *storage.Item](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	s := &Storage{
		cache: cache,
		stop:  make(chan struct{}),
	}

	go s.cleanupExpired(cleanupInterval)

	return s, nil
}

// Get retrieves data for a specific key within the given namespace.
func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Item, error) {
	options := storage.Apply(opts...)
	storageKey := buildKey(options.Namespace, key)

	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.cache.Get(storageKey)
	if !exists {
		return nil, nil
	}
	if item.IsExpired() {
		s.cache.Remove(storageKey)
		return nil, nil
	}

	out := *item
	out.Data = append([]byte(nil), item.Data...)
	return &out, nil
}

// Set stores data for a specific key within the given namespace.
func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	options := storage.Apply(opts...)
	storageKey := buildKey(options.Namespace, key)

	now := time.Now()
	item := &storage.Item{
		Data:      append([]byte(nil), data...),
		CreatedAt: now,
	}
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		item.ExpiresAt = &expiresAt
	}

	s.mu.Lock()
	s.cache.Add(storageKey, item)
	s.mu.Unlock()
	return nil
}

// Delete removes a key, or the whole namespace when no key is given.
func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	options := storage.Apply(opts...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if options.Key != nil {
		s.cache.Remove(buildKey(options.Namespace, *options.Key))
		return nil
	}

	// LRU doesn't provide prefix iteration.
	prefix := options.Namespace + ":"
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Remove(key)
		}
	}
	return nil
}

// Len returns the number of entries currently held, expired ones included.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// Close stops the background cleanup and drops every entry.
func (s *Storage) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
	return nil
}

func buildKey(namespace, key string) string {
	return namespace + ":" + key
}

func (s *Storage) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

func (s *Storage) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, key := range s.cache.Keys() {
		if item, ok := s.cache.Peek(key); ok && item.ExpiresAt != nil && now.After(*item.ExpiresAt) {
			s.cache.Remove(key)
		}
	}
}

var _ storage.Storage = (*Storage)(nil)
