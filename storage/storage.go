// Package storage defines a small volatile key/value interface with TTL
// support. It backs caches that may be lost at any time; nothing stored here
// is durable.
package storage

import (
	"context"
	"time"
)

// Storage is a namespaced key/value store.
type Storage interface {
	// Get retrieves data for key within the namespace selected by opts.
	// Returns a nil Item if the key doesn't exist or has expired.
	// Returns error only for legitimate storage system failures.
	Get(ctx context.Context, key string, opts ...Option) (*Item, error)

	// Set stores data for key within the namespace selected by opts.
	Set(ctx context.Context, key string, data []byte, opts ...Option) error

	// Delete removes a single key when WithKey is given, otherwise the whole
	// namespace.
	Delete(ctx context.Context, opts ...Option) error

	// Close releases resources held by the backend.
	Close() error
}

// Item is a stored value with metadata.
type Item struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time // nil = no expiration
}

// IsExpired checks if the item has expired.
func (it *Item) IsExpired() bool {
	return it.ExpiresAt != nil && time.Now().After(*it.ExpiresAt)
}

// DefaultNamespace is used when no namespace option is given.
const DefaultNamespace = "global"

// Option configures storage operations.
type Option func(*Options)

// Options contains configuration for storage operations.
type Options struct {
	Namespace string
	Key       *string
	TTL       *time.Duration
}

// Apply folds opts into an Options value with defaults filled in.
func Apply(opts ...Option) Options {
	o := Options{Namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	return o
}

// WithNamespace selects the namespace an operation applies to.
func WithNamespace(ns string) Option {
	return func(o *Options) { o.Namespace = ns }
}

// WithKey specifies a single key for Delete. Without it Delete removes the
// entire namespace.
func WithKey(key string) Option {
	return func(o *Options) { o.Key = &key }
}

// WithTTL sets a time-to-live for the stored data. Non-positive values mean
// no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.TTL = &ttl
		}
	}
}
