// Package config loads service configuration from the environment. A .env
// file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full service configuration
type Config struct {
	// Provider credentials; at least one is required
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Provider selects the primary LLM provider ("openai" or "anthropic");
	// empty means the first provider with a key, preferring OpenAI. When
	// both keys are set the other provider acts as fallback.
	Provider string

	// Model overrides the provider's default model
	Model string

	HTTPPort int

	// RedisAddr enables the Redis conversation store when set
	RedisAddr     string
	RedisPassword string
	MemoryTTL     time.Duration

	// PostgresDSN enables the Postgres profile store when set
	PostgresDSN string

	// UseLLMClassifier asks the model to classify intent before falling
	// back to the keyword scorer
	UseLLMClassifier bool

	// MaxInputChars caps user query length fed to agents
	MaxInputChars int

	Debug bool
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		Provider:         os.Getenv("LLM_PROVIDER"),
		Model:            os.Getenv("LLM_MODEL"),
		HTTPPort:         envInt("HTTP_PORT", 8080),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		MemoryTTL:        envDuration("MEMORY_TTL", 24*time.Hour),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		UseLLMClassifier: envBool("USE_LLM_CLASSIFIER", false),
		MaxInputChars:    envInt("MAX_INPUT_CHARS", 4000),
		Debug:            envBool("DEBUG", false),
	}

	if cfg.Provider == "" {
		switch {
		case cfg.OpenAIAPIKey != "":
			cfg.Provider = "openai"
		case cfg.AnthropicAPIKey != "":
			cfg.Provider = "anthropic"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" && c.AnthropicAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY or ANTHROPIC_API_KEY is required")
	}
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=anthropic but ANTHROPIC_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.Provider)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.MaxInputChars <= 0 {
		return fmt.Errorf("MAX_INPUT_CHARS must be positive")
	}
	return nil
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
