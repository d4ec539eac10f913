package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdfquiz/pdfquiz/internal/store"
)

// NewProvider builds the configured provider and wraps it:
// caller → timeout → retry → logging → base.
// repo may be nil when no diagnostic store is open.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		if cfg.Mock.ResponseFile != "" {
			base, err = NewMockProviderFromFile(cfg.Mock.ResponseFile)
		} else {
			base = NewMockProvider()
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, repo, log)
	retried := WithRetry(logged, cfg.Retry)
	return WithTimeout(retried, cfg.Timeout), nil
}

// TimeoutProvider bounds each Generate call.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so that every call runs under timeout. A zero
// timeout returns p unchanged.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
