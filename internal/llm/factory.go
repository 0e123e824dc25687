// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"strings"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Provider names accepted in AIConfig.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// NewProvider returns a single-credential generator for cfg.Provider.
// Empty selects the OpenAI-compatible provider.
func NewProvider(cfg types.AIConfig, key string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI, ProviderGemini:
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:      key,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	case ProviderAnthropic:
		if key == "" {
			return nil, ErrNoCredentials
		}
		return &AnthropicProvider{
			APIKey:    key,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// SecretBase returns the .secrets file base name holding keys for provider.
func SecretBase(provider string) string {
	if strings.EqualFold(strings.TrimSpace(provider), ProviderAnthropic) {
		return "anthropic-api-key"
	}
	return "gemini-api-key"
}
