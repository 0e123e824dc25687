// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/logging"
)

const (
	defaultUserAgent = "thesis-engine/0.1"

	// maxBodyBytes bounds a provider response read into memory.
	maxBodyBytes = 16 << 20
)

// Client issues rate-limited GET requests with a per-call deadline and 429
// retries. The zero value is usable.
type Client struct {
	HTTP       *http.Client
	Limiter    *Limiter
	MaxRetries int
	UserAgent  string
	Log        logrus.FieldLogger
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned HTTP %d: %s", e.URL, e.Status, e.Body)
}

// Get fetches rawURL and returns the body. timeout bounds the whole call,
// including rate-limit waits and retries.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := c.Limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := DoWithRetry(ctx, client, req, c.MaxRetries, c.Log)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	logging.OrDiscard(c.Log).WithFields(logrus.Fields{
		"host":    req.URL.Host,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debug("http get")

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: req.URL.Redacted(), Status: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes a JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, timeout time.Duration, v any) error {
	body, err := c.Get(ctx, rawURL, timeout)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding JSON: %w", err)
	}
	return nil
}

// GetXML fetches rawURL and decodes an XML body into v.
func (c *Client) GetXML(ctx context.Context, rawURL string, timeout time.Duration, v any) error {
	body, err := c.Get(ctx, rawURL, timeout)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding XML: %w", err)
	}
	return nil
}
