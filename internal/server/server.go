// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes search, retrieval, session editing, drafting, and
// export over a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/access"
	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/internal/draft"
	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// DefaultMaxUploadBytes caps a multipart upload when none is configured.
const DefaultMaxUploadBytes = 64 << 20

// Searcher runs a bibliographic search.
type Searcher interface {
	Search(ctx context.Context, q types.SearchQuery) ([]types.BibliographicRecord, error)
}

// Deps holds the collaborators behind the API.
type Deps struct {
	Search    Searcher
	Sessions  *session.Manager
	Drafter   *draft.Drafter // nil disables the generation endpoints
	Extractor *corpus.Extractor
	// Tokens enables bearer-token access control when non-nil.
	Tokens         *access.Registry
	MaxUploadBytes int64
	Log            logrus.FieldLogger
	Now            func() time.Time
}

type api struct {
	deps     *Deps
	log      logrus.FieldLogger
	validate *validator.Validate
	locks    sync.Map // user -> *sync.Mutex
}

// NewRouter returns the API handler.
func NewRouter(deps *Deps) http.Handler {
	a := &api{
		deps:     deps,
		log:      logging.OrDiscard(deps.Log),
		validate: validator.New(),
	}
	if deps.Extractor == nil {
		deps.Extractor = &corpus.Extractor{Log: a.log}
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/healthz", a.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(a.authenticate)

		r.Post("/search", a.search)
		r.Post("/retrieve", a.retrieve)

		r.Route("/sessions/{user}", func(r chi.Router) {
			r.Use(a.authorizeUser)

			r.Get("/", a.getSession)
			r.Put("/", a.updateSession)
			r.Delete("/", a.resetSession)
			r.Post("/search", a.sessionSearch)
			r.Post("/documents", a.uploadDocuments)
			r.Post("/titles", a.suggestTitles)
			r.Post("/formulas", a.searchFormulas)
			r.Post("/outline/{chapter}", a.outline)
			r.Post("/chapters/{chapter}/sections", a.writeSection)
			r.Delete("/chapters/{chapter}", a.resetChapter)
			r.Get("/citations", a.checkCitations)
			r.Get("/export", a.export)
		})
	})
	return r
}

// lock serializes read-modify-write cycles on one user's session.
func (a *api) lock(user string) func() {
	v, _ := a.locks.LoadOrStore(session.Key(user), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"generation": a.deps.Drafter != nil,
		"time":       a.deps.Now().UTC().Format(time.RFC3339),
	})
}
