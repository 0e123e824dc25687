// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/access"
)

type ctxKey int

const userKey ctxKey = iota

func (a *api) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}

// authenticate resolves the bearer token to a user when a registry is
// configured. Without one every request passes.
func (a *api) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.deps.Tokens == nil {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		user, err := a.deps.Tokens.Check(token, a.deps.Now())
		if err != nil {
			if !errors.Is(err, access.ErrUnknownToken) && !errors.Is(err, access.ErrExpired) {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// authorizeUser keeps authenticated callers inside their own session.
func (a *api) authorizeUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := r.Context().Value(userKey).(string); ok && user != chi.URLParam(r, "user") {
			writeError(w, http.StatusForbidden, errors.New("token does not grant access to this session"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
