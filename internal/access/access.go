// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package access checks access codes against a YAML registry of users and
// expiry dates.
package access

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

var (
	ErrUnknownToken = errors.New("unknown access token")
	ErrExpired      = errors.New("access token expired")
)

// dateLayout is the expiry format in the registry file.
const dateLayout = "2006-01-02"

// unparsableGrace is the validity given to entries whose expiry cannot be
// parsed, counted from load time.
const unparsableGrace = 365 * 24 * time.Hour

// Entry is one registry record as written in the file.
type Entry struct {
	User    string `yaml:"user"`
	Expires string `yaml:"expires"`
}

type grant struct {
	user    string
	expires time.Time // start of the expiry day, UTC
}

// Registry maps tokens to users.
type Registry struct {
	grants map[string]grant
}

// Load reads a registry file of the form:
//
//	tokens:
//	  ABC123: {user: ana, expires: 2026-12-31}
func Load(path string, now time.Time) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token registry: %w", err)
	}
	return Parse(data, now)
}

// Parse builds a registry from YAML. An entry without a user is keyed by
// its token.
func Parse(data []byte, now time.Time) (*Registry, error) {
	var doc struct {
		Tokens map[string]Entry `yaml:"tokens"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing token registry: %w", err)
	}

	r := &Registry{grants: make(map[string]grant, len(doc.Tokens))}
	for token, e := range doc.Tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		user := strings.TrimSpace(e.User)
		if user == "" {
			user = token
		}
		r.grants[token] = grant{user: user, expires: parseExpiry(e.Expires, now)}
	}
	return r, nil
}

func parseExpiry(s string, now time.Time) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return day(now.Add(unparsableGrace))
	}
	return t
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Check returns the user for token. The expiry date itself is still valid.
func (r *Registry) Check(token string, now time.Time) (string, error) {
	g, ok := r.grants[strings.TrimSpace(token)]
	if !ok {
		return "", ErrUnknownToken
	}
	if day(now).After(g.expires) {
		return "", ErrExpired
	}
	return g.user, nil
}

// Len returns the number of tokens.
func (r *Registry) Len() int { return len(r.grants) }
