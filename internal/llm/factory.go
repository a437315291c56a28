package llm

import (
	"context"
	"fmt"

	"github.com/learnify/learnify/internal/logging"
	"github.com/learnify/learnify/internal/store"
)

// Source hands out a Provider bound to one user's API key.
type Source interface {
	ForKey(ctx context.Context, apiKey string) (Provider, error)
}

// Factory builds providers from configuration. There is no shared client:
// each call gets a provider carrying the caller's own credential, wrapped
// with request logging and retries of transient failures.
type Factory struct {
	cfg    Config
	events store.EventRepo
	logger *logging.Logger
}

// NewFactory creates a Factory. events may be nil to skip the audit trail.
func NewFactory(cfg Config, events store.EventRepo, logger *logging.Logger) *Factory {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Factory{cfg: cfg, events: events, logger: logger}
}

// ForKey creates a provider that authenticates with apiKey.
func (f *Factory) ForKey(ctx context.Context, apiKey string) (Provider, error) {
	var base Provider
	var err error

	switch f.cfg.Provider {
	case ProviderAnthropic:
		c := f.cfg.Anthropic
		c.APIKey = apiKey
		base, err = NewAnthropicProvider(c)
	case ProviderOpenAI:
		c := f.cfg.OpenAI
		c.APIKey = apiKey
		base, err = NewOpenAIProvider(c)
	case ProviderGemini:
		c := f.cfg.Gemini
		c.APIKey = apiKey
		base, err = NewGeminiProvider(ctx, c)
	case ProviderOpenRouter:
		c := f.cfg.OpenRouter
		c.APIKey = apiKey
		base, err = NewOpenRouterProvider(c)
	case ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", f.cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", f.cfg.Provider, err)
	}

	// Every attempt is logged, so retries show up in the audit trail.
	logged := WithLogging(base, f.cfg.Provider, f.events, f.logger)
	if f.cfg.Retry.MaxAttempts > 1 {
		return WithRetry(logged, f.cfg.Retry), nil
	}
	return logged, nil
}

// StaticSource always returns the same provider regardless of key.
// Used with MockProvider in tests and local demos.
type StaticSource struct {
	Provider Provider
}

func (s StaticSource) ForKey(context.Context, string) (Provider, error) {
	return s.Provider, nil
}
