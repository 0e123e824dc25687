// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIBaseURL is Google's OpenAI-compatible Gemini endpoint.
	DefaultOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultOpenAIModel   = "gemini-2.5-flash"

	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 8192
)

// systemPrompt frames every generation call.
const systemPrompt = "You are an academic writing assistant for undergraduate and master's theses. Write in formal Indonesian unless the prompt asks otherwise."

// OpenAIProvider calls a Chat Completions endpoint with one credential.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// OpenAIConfig configures an OpenAIProvider.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// NewOpenAIProvider returns a provider for cfg. BaseURL defaults to the
// Gemini endpoint and Model to DefaultOpenAIModel.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoCredentials
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultOpenAIBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	p := &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
	if p.model == "" {
		p.model = DefaultOpenAIModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = defaultMaxTokens
	}
	if p.timeout <= 0 {
		p.timeout = defaultTimeout
	}
	return p, nil
}

// Generate sends prompt as a single user message.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
