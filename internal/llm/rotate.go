// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Rotator tries an ordered list of single-credential generators. A quota
// error advances the cursor to the next credential; anything else ends the
// call. The cursor survives between calls.
type Rotator struct {
	mu      sync.Mutex
	gens    []Generator
	current int
	log     logrus.FieldLogger
}

// NewRotatorFrom wraps already-built generators. It is the seam tests use.
func NewRotatorFrom(log logrus.FieldLogger, gens ...Generator) (*Rotator, error) {
	if len(gens) == 0 {
		return nil, ErrNoCredentials
	}
	return &Rotator{gens: gens, log: logging.OrDiscard(log)}, nil
}

// NewRotator builds one provider per key from cfg.
func NewRotator(cfg types.AIConfig, keys []string, log logrus.FieldLogger) (*Rotator, error) {
	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}
	gens := make([]Generator, 0, len(keys))
	for i, key := range keys {
		g, err := NewProvider(cfg, key)
		if err != nil {
			return nil, fmt.Errorf("credential %d: %w", i+1, err)
		}
		gens = append(gens, g)
	}
	return NewRotatorFrom(log, gens...)
}

// Len returns the number of credentials.
func (r *Rotator) Len() int { return len(r.gens) }

// Cursor returns the index of the credential the next call starts with.
func (r *Rotator) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Generate tries each credential at most once, starting at the cursor.
func (r *Rotator) Generate(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	start := r.current
	r.mu.Unlock()

	var messages []string
	for attempt := 0; attempt < len(r.gens); attempt++ {
		idx := (start + attempt) % len(r.gens)
		text, err := r.gens[idx].Generate(ctx, prompt)
		if err == nil {
			r.setCursor(idx)
			return text, nil
		}

		messages = append(messages, err.Error())
		if errors.Is(err, ErrEmptyResponse) {
			r.setCursor(idx)
			return "", &GenerationError{Messages: messages, Err: ErrEmptyResponse}
		}
		kind := ClassifyError(err)
		if kind != ErrorQuota {
			r.setCursor(idx)
			return "", &GenerationError{Messages: messages, Err: err}
		}

		r.log.WithFields(logrus.Fields{
			"credential": idx + 1,
			"of":         len(r.gens),
		}).Warn("quota exceeded, rotating credential")
		r.setCursor((idx + 1) % len(r.gens))
	}
	return "", &GenerationError{Messages: messages, Err: ErrQuotaExhausted}
}

func (r *Rotator) setCursor(i int) {
	r.mu.Lock()
	r.current = i
	r.mu.Unlock()
}
