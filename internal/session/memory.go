// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Values do not survive a
// restart.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore returns a store whose entries expire after ttl. Zero ttl
// keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	expiry := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiry = ttl
		cleanup = ttl
	}
	return &MemoryStore{cache: gocache.New(expiry, cleanup)}
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	m.cache.Set(key, buf, gocache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v.([]byte), nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *MemoryStore) Close() error {
	m.cache.Flush()
	return nil
}
