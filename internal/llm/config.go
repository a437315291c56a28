package llm

import (
	"fmt"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
// API keys are never configured here: every call uses the acting user's
// stored credential, filled in by Factory.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `yaml:"provider" env:"LEARNIFY_LLM_PROVIDER" env-default:"gemini"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`

	// Timeout bounds a single generation call. Default: 60s.
	Timeout time.Duration `yaml:"timeout" env:"LEARNIFY_LLM_TIMEOUT" env-default:"60s"`

	// MaxTokens caps the response length of every request.
	MaxTokens int `yaml:"max_tokens" env:"LEARNIFY_LLM_MAX_TOKENS" env-default:"8192"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig controls retries of transient provider failures.
// MaxAttempts of 0 or 1 disables retrying.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" env:"LEARNIFY_LLM_RETRY_ATTEMPTS" env-default:"2"`
	InitialWait time.Duration `yaml:"initial_wait" env:"LEARNIFY_LLM_RETRY_WAIT" env-default:"500ms"`
	MaxWait     time.Duration `yaml:"max_wait" env-default:"4s"`
	Multiplier  float64       `yaml:"multiplier" env-default:"2"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model" env:"LEARNIFY_ANTHROPIC_MODEL" env-default:"claude-haiku"`
	BaseURL string `yaml:"base_url" env:"LEARNIFY_ANTHROPIC_BASE_URL"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model" env:"LEARNIFY_OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL string `yaml:"base_url" env:"LEARNIFY_OPENAI_BASE_URL"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model" env:"LEARNIFY_GEMINI_MODEL" env-default:"gemini-flash"`
	BaseURL string `yaml:"base_url" env:"LEARNIFY_GEMINI_BASE_URL"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model" env:"LEARNIFY_OPENROUTER_MODEL" env-default:"google/gemini-2.0-flash-exp"`
	BaseURL string `yaml:"base_url" env:"LEARNIFY_OPENROUTER_BASE_URL"`
	// Referer is sent as HTTP-Referer for OpenRouter app attribution.
	Referer string `yaml:"referer" env:"LEARNIFY_OPENROUTER_REFERER"`
}

// DefaultConfig returns a Config with the same defaults the env tags declare.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Timeout:   60 * time.Second,
		MaxTokens: 8192,
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// Validate checks the provider name and limits.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter, ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM timeout must be > 0, got %s", c.Timeout)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM max tokens must be > 0, got %d", c.MaxTokens)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("LLM retry attempts must be >= 0, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// ModelFor returns the configured model name for the selected provider.
func (c Config) ModelFor() string {
	switch c.Provider {
	case ProviderAnthropic:
		return resolveModel(c.Anthropic.Model, anthropicModels)
	case ProviderOpenAI:
		return resolveModel(c.OpenAI.Model, openaiModels)
	case ProviderGemini:
		return resolveModel(c.Gemini.Model, geminiModels)
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	default:
		return c.Provider
	}
}
