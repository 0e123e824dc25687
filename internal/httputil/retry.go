// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by search providers:
// 429 backoff, per-host rate limiting, and bounded JSON/XML fetches.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/logging"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = time.Second

// maxRetryAfter caps a server-supplied Retry-After so a single provider
// cannot stall a search past its own deadline.
const maxRetryAfter = 30 * time.Second

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests). The wait is the server's Retry-After when present, otherwise
// RetryBaseDelay doubled per attempt.
//
// maxRetries of 0 sends the request once. On each 429 the response body is
// drained and closed before sleeping. If the context is cancelled during a
// wait the function returns ctx.Err(). After exhausting retries the last 429
// response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log logrus.FieldLogger) (*http.Response, error) {
	log = logging.OrDiscard(log)

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		wait := retryAfter(resp.Header.Get("Retry-After"))
		if wait == 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.WithFields(logrus.Fields{
			"host":    req.URL.Host,
			"attempt": attempt + 1,
			"wait":    wait.String(),
		}).Debug("rate limited, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}
