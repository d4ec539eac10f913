package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider talks to OpenRouter through its OpenAI-compatible API.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting OpenRouter. Model ids
// are passed through untouched ("openai/gpt-4o", "google/gemini-2.5-flash").
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouterProvider{
		OpenAIProvider: newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model),
	}, nil
}
