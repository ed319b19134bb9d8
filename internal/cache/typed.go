// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// TypedCache stores values of type T as JSON in a byte cache.
type TypedCache[T any] struct {
	cache      Cache
	defaultTTL time.Duration

	// generation is bumped by every Delete. A GetOrSet fill that overlaps
	// a Delete drops the value it stored.
	generation atomic.Uint64
}

// NewTypedCache creates a new TypedCache wrapping the given cache implementation.
func NewTypedCache[T any](cache Cache, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached value and true, or false on a miss or decode failure.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		slog.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return value, false
	}

	return value, true
}

// Set stores a value in the cache with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, c.defaultTTL)
}

// Delete removes a key from the cache. Fills started before the call
// will not leave their value behind.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	c.generation.Add(1)
	return c.cache.Delete(ctx, key)
}

// GetOrSet returns the cached value, or computes it with fn and stores it.
// Cache write failures are logged and do not fail the call.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func() (T, error)) (T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	gen := c.generation.Load()

	value, err := fn()
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value); err != nil {
		slog.Warn("failed to store cache entry", "key", key, "error", err)
		return value, nil
	}

	// A Delete ran while fn was loading: what we stored may predate it.
	if c.generation.Load() != gen {
		if err := c.cache.Delete(ctx, key); err != nil {
			slog.Warn("failed to drop stale cache entry", "key", key, "error", err)
		}
	}

	return value, nil
}
