// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// ErrNotFound is returned by Store.Get for an absent key.
var ErrNotFound = errors.New("key not found")

// Store is the key-value persistence collaborator.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted in SessionConfig.Backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// DefaultSQLitePath is used when the sqlite backend has no Path.
const DefaultSQLitePath = "thesis-engine.db"

// OpenStore returns the backend named by cfg.Backend. Empty selects memory.
func OpenStore(ctx context.Context, cfg types.SessionConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemoryStore(cfg.TTL), nil
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath
		}
		return NewSQLiteStore(path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
