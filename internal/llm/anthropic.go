// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// anthropicAPIURL is the Messages API endpoint. Package-level var for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

const DefaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicProvider calls the Anthropic Messages API with one credential.
type AnthropicProvider struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Client    *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// anthropicError carries the HTTP status so ClassifyError can see 429s.
type anthropicError struct {
	Status int
	Body   string
}

func (e *anthropicError) Error() string {
	return fmt.Sprintf("Anthropic API returned %d: %s", e.Status, e.Body)
}

// Generate sends prompt as a single user message and concatenates the text
// blocks of the reply.
func (a *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if a.APIKey == "" {
		return "", ErrNoCredentials
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := a.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &anthropicError{Status: resp.StatusCode, Body: string(b)}
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding Anthropic response: %w", err)
	}

	var sb strings.Builder
	for _, block := range aResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
