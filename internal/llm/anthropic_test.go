// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := anthropicAPIURL
	anthropicAPIURL = ts.URL
	t.Cleanup(func() {
		anthropicAPIURL = old
		ts.Close()
	})
}

func TestAnthropicProviderGenerate(t *testing.T) {
	anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultAnthropicModel, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "tulis bab", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Bagian "},{"type":"text","text":"satu"}]}`))
	})

	p := &AnthropicProvider{APIKey: "secret"}
	text, err := p.Generate(context.Background(), "tulis bab")
	require.NoError(t, err)
	assert.Equal(t, "Bagian satu", text)
}

func TestAnthropicProviderStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusTooManyRequests, ErrorQuota},
		{http.StatusUnauthorized, ErrorAuth},
		{http.StatusInternalServerError, ErrorOther},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error"}`))
			})
			_, err := (&AnthropicProvider{APIKey: "k"}).Generate(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, tt.want, ClassifyError(err))
		})
	}
}

func TestAnthropicProviderEmptyContent(t *testing.T) {
	anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})
	_, err := (&AnthropicProvider{APIKey: "k"}).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
