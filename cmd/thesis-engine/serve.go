// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/access"
	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/internal/search"
	"github.com/pdiddy/thesis-engine/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and drafting API over HTTP",
	Long: `Serve exposes search, retrieval, and the per-user session operations as a
JSON API under /api. When server.tokens_file is set, every /api request
needs a bearer token from that registry and may only touch its own user's
session. Generation endpoints return 503 when no AI credentials are
configured.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr, store, err := openSessions(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := &server.Deps{
		Search:         search.New(cfg.Search, log),
		Sessions:       mgr,
		Extractor:      &corpus.Extractor{Log: log},
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Log:            log,
	}

	if d, err := newDrafter(); err != nil {
		log.WithError(err).Warn("generation endpoints disabled")
	} else {
		deps.Drafter = d
	}

	if cfg.Server.TokensFile != "" {
		reg, err := access.Load(cfg.Server.TokensFile, time.Now())
		if err != nil {
			return err
		}
		deps.Tokens = reg
		log.WithField("tokens", reg.Len()).Info("access control enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")

	rootCmd.AddCommand(serveCmd)
}
