// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"
)

const keyPrefix = "session:"

// Key returns the storage key for user. Bytes outside [a-zA-Z0-9] are
// written as "_" plus two hex digits, so distinct users never share a key.
// An empty user maps to "default".
func Key(user string) string {
	if user == "" {
		user = "default"
	}
	var b strings.Builder
	b.WriteString(keyPrefix)
	for i := 0; i < len(user); i++ {
		c := user[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "_%02x", c)
	}
	return b.String()
}

// Manager loads and saves sessions as YAML documents in a Store.
type Manager struct {
	Store Store
	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// NewManager returns a manager over store.
func NewManager(store Store) *Manager {
	return &Manager{Store: store}
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now()
}

// Load returns the stored session for user, or a fresh one when none exists.
// A fresh session is not persisted until Save.
func (m *Manager) Load(ctx context.Context, user string) (*Session, error) {
	data, err := m.Store.Get(ctx, Key(user))
	if errors.Is(err, ErrNotFound) {
		return New(uuid.NewString(), user, m.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	s.ensureMaps()
	return &s, nil
}

// Save stamps UpdatedAt and writes s.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = m.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := m.Store.Put(ctx, Key(s.User), data); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Reset deletes everything stored for user, corpus included, and returns
// a fresh session.
func (m *Manager) Reset(ctx context.Context, user string) (*Session, error) {
	if err := m.Store.Delete(ctx, Key(user)); err != nil {
		return nil, fmt.Errorf("resetting session: %w", err)
	}
	return New(uuid.NewString(), user, m.now()), nil
}
