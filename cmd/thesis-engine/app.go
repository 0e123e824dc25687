// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/draft"
	"github.com/pdiddy/thesis-engine/internal/llm"
	"github.com/pdiddy/thesis-engine/internal/session"
)

// openSessions opens the configured session store. The caller closes the
// returned store.
func openSessions(ctx context.Context) (*session.Manager, session.Store, error) {
	store, err := session.OpenStore(ctx, cfg.Session)
	if err != nil {
		return nil, nil, fmt.Errorf("opening session store: %w", err)
	}
	return session.NewManager(store), store, nil
}

// newDrafter builds a drafter over the rotating generator for cfg.AI.
func newDrafter() (*draft.Drafter, error) {
	gen, err := llm.NewRotator(cfg.AI, cfg.AI.APIKeys, log)
	if err != nil {
		return nil, fmt.Errorf("configuring %s generator: %w (add keys to %s%s)",
			cfg.AI.Provider, err, secretsDir, llm.SecretBase(cfg.AI.Provider))
	}
	return draft.New(gen, log), nil
}

// updateSession loads the session for the command's user, applies fn, and
// saves the result. Nothing is saved when fn fails.
func updateSession(cmd *cobra.Command, fn func(ctx context.Context, s *session.Session) error) error {
	ctx := cmd.Context()
	mgr, store, err := openSessions(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := mgr.Load(ctx, currentUser(cmd))
	if err != nil {
		return err
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	return mgr.Save(ctx, s)
}

// viewSession loads the session for the command's user without saving.
func viewSession(cmd *cobra.Command) (*session.Session, error) {
	ctx := cmd.Context()
	mgr, store, err := openSessions(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return mgr.Load(ctx, currentUser(cmd))
}
