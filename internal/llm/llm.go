// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the text-generation collaborator: a single Generate call
// backed by an OpenAI-compatible or Anthropic endpoint, with credential
// rotation on quota errors.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrQuotaExhausted reports that every configured credential hit its quota.
	ErrQuotaExhausted = errors.New("all credentials exhausted their quota")

	// ErrEmptyResponse reports a successful call that produced no text.
	ErrEmptyResponse = errors.New("model returned no text")

	// ErrNoCredentials reports a generator built without any API key.
	ErrNoCredentials = errors.New("no API credentials configured")
)

// ErrorKind classifies provider errors for the rotation policy.
type ErrorKind int

const (
	ErrorOther ErrorKind = iota
	ErrorQuota
	ErrorAuth
	ErrorTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorQuota:
		return "quota"
	case ErrorAuth:
		return "auth"
	case ErrorTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// quotaMarkers are lowercase substrings providers use for quota and rate
// limit failures.
var quotaMarkers = []string{
	"quota", "429", "resource_exhausted", "resource exhausted",
	"rate limit", "rate_limit", "insufficient_quota", "too many requests",
}

// ClassifyError maps a provider error to an ErrorKind.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}

	if status := httpStatus(err); status != 0 {
		switch status {
		case http.StatusTooManyRequests:
			return ErrorQuota
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrorAuth
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return ErrorQuota
		}
	}
	return ErrorOther
}

// httpStatus extracts an HTTP status code from known provider error types.
func httpStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var anthErr *anthropicError
	if errors.As(err, &anthErr) {
		return anthErr.Status
	}
	return 0
}

// GenerationError is the reportable failure surfaced to callers. It carries
// each provider message collected during the call.
type GenerationError struct {
	Messages []string
	Err      error
}

func (e *GenerationError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed: %v: %s", e.Err, strings.Join(e.Messages, "; "))
}

func (e *GenerationError) Unwrap() error { return e.Err }
