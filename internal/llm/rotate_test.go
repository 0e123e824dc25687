// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// fakeGen returns a scripted result and counts calls.
type fakeGen struct {
	text  string
	err   error
	calls int
}

func (f *fakeGen) Generate(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

var errQuota = errors.New("googleapi: Error 429: Resource has been exhausted (e.g. check quota)")

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorOther},
		{"quota text", errors.New("insufficient_quota"), ErrorQuota},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), ErrorQuota},
		{"rate limit", errors.New("Rate limit reached"), ErrorQuota},
		{"429 in message", errQuota, ErrorQuota},
		{"deadline", context.DeadlineExceeded, ErrorTimeout},
		{"anthropic 403", &anthropicError{Status: 403}, ErrorAuth},
		{"other", errors.New("boom"), ErrorOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestRotatorFirstCredentialSucceeds(t *testing.T) {
	a, b := &fakeGen{text: "ok"}, &fakeGen{text: "unused"}
	r, err := NewRotatorFrom(nil, a, b)
	require.NoError(t, err)

	text, err := r.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 0, b.calls)
}

func TestRotatorAdvancesOnQuota(t *testing.T) {
	a, b := &fakeGen{err: errQuota}, &fakeGen{text: "from b"}
	r, err := NewRotatorFrom(nil, a, b)
	require.NoError(t, err)

	text, err := r.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "from b", text)
	assert.Equal(t, 1, r.Cursor())

	// The next call starts from the credential that worked.
	_, err = r.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestRotatorAllExhausted(t *testing.T) {
	gens := []Generator{&fakeGen{err: errQuota}, &fakeGen{err: errors.New("quota exceeded for key 2")}, &fakeGen{err: errQuota}}
	r, err := NewRotatorFrom(nil, gens...)
	require.NoError(t, err)

	_, err = r.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExhausted)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Len(t, genErr.Messages, 3)
	assert.Contains(t, err.Error(), "quota exceeded for key 2")
	for _, g := range gens {
		assert.Equal(t, 1, g.(*fakeGen).calls)
	}
}

func TestRotatorNonQuotaErrorStops(t *testing.T) {
	boom := errors.New("invalid argument")
	a, b := &fakeGen{err: boom}, &fakeGen{text: "unused"}
	r, err := NewRotatorFrom(nil, a, b)
	require.NoError(t, err)

	_, err = r.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, b.calls)
	assert.Equal(t, 0, r.Cursor())
}

func TestRotatorEmptyResponseIsGenerationError(t *testing.T) {
	r, err := NewRotatorFrom(nil, &fakeGen{err: ErrEmptyResponse}, &fakeGen{text: "unused"})
	require.NoError(t, err)

	_, err = r.Generate(context.Background(), "p")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewRotatorRequiresKeys(t *testing.T) {
	_, err := NewRotator(types.AIConfig{}, nil, nil)
	assert.ErrorIs(t, err, ErrNoCredentials)

	r, err := NewRotator(types.AIConfig{Provider: "anthropic"}, []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	_, err = NewRotator(types.AIConfig{Provider: "llama"}, []string{"a"}, nil)
	assert.Error(t, err)
}

func TestSecretBase(t *testing.T) {
	assert.Equal(t, "anthropic-api-key", SecretBase("Anthropic"))
	assert.Equal(t, "gemini-api-key", SecretBase(""))
}
