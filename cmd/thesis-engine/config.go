// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/thesis-engine/internal/llm"
	"github.com/pdiddy/thesis-engine/internal/secrets"
	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// setDefaults registers every config key so environment variables can
// override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.user_agent", "thesis-engine/"+version)
	v.SetDefault("search.ncbi_api_key", "")
	v.SetDefault("search.email", "")
	v.SetDefault("search.normalize_titles", false)
	v.SetDefault("search.max_retries", 2)

	v.SetDefault("ai.provider", llm.ProviderOpenAI)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.api_keys", []string{})
	v.SetDefault("ai.max_tokens", 0)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", 120*time.Second)

	v.SetDefault("session.backend", session.BackendSQLite)
	v.SetDefault("session.path", session.DefaultSQLitePath)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.key_prefix", "thesis-engine:")
	v.SetDefault("session.ttl", time.Duration(0))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.tokens_file", "")
	v.SetDefault("server.max_upload_bytes", 64<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
}

// providerEnvKeys are the conventional environment variables for each
// provider's key, consulted after config and .secrets/.
var providerEnvKeys = map[string]string{
	"gemini-api-key":    "GEMINI_API_KEY",
	"anthropic-api-key": "ANTHROPIC_API_KEY",
}

// loadConfig unmarshals v and fills credentials left empty from the
// secrets directory: config first, then secrets, then provider env vars.
func loadConfig(v *viper.Viper, s map[string]string) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("parsing config: %w", err)
	}

	c.Search.NCBIAPIKey = firstNonEmpty(c.Search.NCBIAPIKey, s["ncbi-api-key"])
	c.Search.Email = firstNonEmpty(c.Search.Email, s["contact-email"])
	c.Session.RedisPassword = firstNonEmpty(c.Session.RedisPassword, s["redis-password"])

	c.AI.APIKeys = nonEmpty(c.AI.APIKeys)
	if len(c.AI.APIKeys) == 0 {
		base := llm.SecretBase(c.AI.Provider)
		c.AI.APIKeys = secrets.Credentials(s, base)
		if len(c.AI.APIKeys) == 0 {
			if key := os.Getenv(providerEnvKeys[base]); key != "" {
				c.AI.APIKeys = []string{key}
			}
		}
	}
	return c, nil
}

// currentUser resolves the session owner from --user, then
// THESIS_ENGINE_USER. Empty falls through to the default session.
func currentUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	return os.Getenv("THESIS_ENGINE_USER")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
