package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config selects and configures the model provider.
type Config struct {
	// Provider is one of "openai", "anthropic", "gemini", "openrouter", "mock".
	Provider string

	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Mock       MockConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible gateways
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// MockConfig configures the offline provider. ResponseFile, when set,
// is served as the content of every call.
type MockConfig struct {
	ResponseFile string
}

// RetryConfig configures retries of transient failures. MaxAttempts of 1
// disables retrying.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the production defaults: OpenAI gpt-4o, a single
// attempt and a timeout long enough for a ten-question generation.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 120 * time.Second,
	}
}

// ConfigFromEnv builds a Config from PDFQUIZ_* variables. The vendor's own
// key variables (OPENAI_API_KEY and friends) are used when the prefixed
// ones are unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("PDFQUIZ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	cfg.OpenAI.APIKey = firstEnv("PDFQUIZ_OPENAI_API_KEY", "OPENAI_API_KEY")
	if m := os.Getenv("PDFQUIZ_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("PDFQUIZ_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	cfg.Anthropic.APIKey = firstEnv("PDFQUIZ_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	if m := os.Getenv("PDFQUIZ_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	cfg.Gemini.APIKey = firstEnv("PDFQUIZ_GEMINI_API_KEY", "GEMINI_API_KEY")
	if m := os.Getenv("PDFQUIZ_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	cfg.OpenRouter.APIKey = firstEnv("PDFQUIZ_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	if m := os.Getenv("PDFQUIZ_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	cfg.Mock.ResponseFile = os.Getenv("PDFQUIZ_MOCK_RESPONSE")

	if v := os.Getenv("PDFQUIZ_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("PDFQUIZ_LLM_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}

	return cfg
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the selected provider has its API key. A missing key
// is a startup error, never a per-request one.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("PDFQUIZ_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("PDFQUIZ_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("PDFQUIZ_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("LLM timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
