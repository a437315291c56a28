// Package config loads Learnify settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/learnify/learnify/internal/generation"
	"github.com/learnify/learnify/internal/lifecycle"
	"github.com/learnify/learnify/internal/llm"
	"github.com/learnify/learnify/internal/store"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// Config holds all application settings.
// Secrets are env-only and never read from YAML.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"LEARNIFY_BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"LEARNIFY_PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"LEARNIFY_ENV" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LEARNIFY_LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"`

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `yaml:"cors_origins" env:"LEARNIFY_CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`

	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	LLM        llm.Config       `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`

	// CredentialsKey encrypts user API keys at rest. Either a base64 encoded
	// 32-byte key or a passphrase.
	CredentialsKey string `yaml:"-" env:"LEARNIFY_CREDENTIALS_KEY"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"LEARNIFY_DB_DRIVER" env-default:"sqlite"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	// Empty with sqlite means the default data directory.
	DSN string `yaml:"dsn" env:"LEARNIFY_DB_DSN"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"-" env:"LEARNIFY_JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env:"LEARNIFY_JWT_ISSUER" env-default:"learnify"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"LEARNIFY_TOKEN_TTL" env-default:"24h"`
}

// GenerationConfig holds limits applied to generation requests.
type GenerationConfig struct {
	MaxSourceRunes int     `yaml:"max_source_runes" env:"LEARNIFY_MAX_SOURCE_RUNES" env-default:"20000"`
	Temperature    float64 `yaml:"temperature" env:"LEARNIFY_TEMPERATURE" env-default:"0.4"`
	SpacingX       float64 `yaml:"spacing_x" env:"LEARNIFY_LAYOUT_SPACING_X" env-default:"240"`
	SpacingY       float64 `yaml:"spacing_y" env:"LEARNIFY_LAYOUT_SPACING_Y" env-default:"160"`
}

// Load reads configuration from path, falling back to environment variables
// and defaults when the file does not exist. An empty path means DefaultPath.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := &Config{Version: version}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	return cfg, nil
}

// Validate checks everything the HTTP server needs.
func (c *Config) Validate() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("LEARNIFY_JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.CredentialsKey == "" {
		return fmt.Errorf("LEARNIFY_CREDENTIALS_KEY is required")
	}
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	return c.validateLLM()
}

// ValidateStorage checks only the database settings, for commands that do
// not serve requests or call a model.
func (c *Config) ValidateStorage() error {
	switch c.Database.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("LEARNIFY_DB_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q (want %s or %s)",
			c.Database.Driver, store.DriverSQLite, store.DriverPostgres)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.Generation.MaxSourceRunes <= 0 {
		return fmt.Errorf("max_source_runes must be positive, got %d", c.Generation.MaxSourceRunes)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// GenerationSettings maps the config onto the generator's settings.
func (c *Config) GenerationSettings() generation.Config {
	g := generation.DefaultConfig()
	if c.LLM.MaxTokens > 0 {
		g.MaxTokens = c.LLM.MaxTokens
	}
	g.Temperature = c.Generation.Temperature
	if c.Generation.MaxSourceRunes > 0 {
		g.MaxSourceRunes = c.Generation.MaxSourceRunes
	}
	return g
}

// LifecycleSettings maps the config onto the lifecycle manager's settings.
func (c *Config) LifecycleSettings() lifecycle.Config {
	l := lifecycle.DefaultConfig()
	if c.LLM.Timeout > 0 {
		l.GenerationTimeout = c.LLM.Timeout
	}
	if c.Generation.SpacingX > 0 {
		l.SpacingX = c.Generation.SpacingX
	}
	if c.Generation.SpacingY > 0 {
		l.SpacingY = c.Generation.SpacingY
	}
	return l
}
