package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the fallback HTTP request timeout. Providers apply their own
	// per-call deadlines on top of it.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "thesis-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the bibliographic search aggregator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// NCBIAPIKey raises the PubMed rate limit from 3 to 10 requests per second.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty" mapstructure:"ncbi_api_key"`

	// Email is sent to PubMed (email) and Crossref (mailto) for polite access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// NormalizeTitles keys deduplication on case-folded, whitespace-collapsed
	// titles with trailing punctuation removed instead of exact titles.
	NormalizeTitles bool `json:"normalize_titles" yaml:"normalize_titles" mapstructure:"normalize_titles"`

	// MaxRetries bounds 429 retries per provider call (0 disables retries).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AIConfig holds settings for the text-generation collaborator.
type AIConfig struct {
	// Provider selects the backend: "openai" (any OpenAI-compatible endpoint,
	// Gemini by default) or "anthropic".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKeys is the ordered credential list used for rotation on quota errors.
	APIKeys []string `json:"-" yaml:"-" mapstructure:"api_keys"`

	// MaxTokens caps the response length (0 uses the provider default).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float32 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// SessionConfig selects and configures the session storage backend.
type SessionConfig struct {
	// Backend is "memory", "sqlite", or "redis".
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file for the sqlite backend.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// RedisAddr is host:port for the redis backend.
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`

	// RedisPassword authenticates against redis.
	RedisPassword string `json:"-" yaml:"-" mapstructure:"redis_password"`

	// RedisDB selects the redis logical database.
	RedisDB int `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`

	// KeyPrefix namespaces keys in shared stores.
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix" mapstructure:"key_prefix"`

	// TTL expires idle sessions in backends that support it (0 keeps them).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// TokensFile is the access-token registry. Empty disables token checks.
	TokensFile string `json:"tokens_file" yaml:"tokens_file" mapstructure:"tokens_file"`

	// MaxUploadBytes caps a multipart document upload.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is a logrus level name ("debug", "info", "warn").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// File, when set, receives log output with size-based rotation.
	File string `json:"file" yaml:"file" mapstructure:"file"`

	// MaxSizeMB is the rotation threshold for File.
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`
}

// Config groups every component configuration.
type Config struct {
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	AI      AIConfig      `json:"ai" yaml:"ai" mapstructure:"ai"`
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
