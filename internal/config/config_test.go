package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// clearEnv unsets every variable the tests depend on so the host
// environment cannot leak into results.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LEARNIFY_BIND_ADDR", "LEARNIFY_PORT", "LEARNIFY_ENV", "LEARNIFY_LOG_LEVEL",
		"LEARNIFY_CORS_ORIGINS", "LEARNIFY_DB_DRIVER", "LEARNIFY_DB_DSN",
		"LEARNIFY_JWT_SECRET", "LEARNIFY_JWT_ISSUER", "LEARNIFY_TOKEN_TTL",
		"LEARNIFY_CREDENTIALS_KEY", "LEARNIFY_LLM_PROVIDER", "LEARNIFY_LLM_TIMEOUT",
		"LEARNIFY_LLM_MAX_TOKENS", "LEARNIFY_MAX_SOURCE_RUNES",
	} {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "v-test")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Version != "v-test" {
		t.Errorf("expected Version=v-test, got %s", cfg.Version)
	}
	if cfg.Port != "8080" || cfg.BindAddr != "127.0.0.1" {
		t.Errorf("unexpected listen defaults: %s", cfg.Addr())
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
port: "9000"
env: "staging"
database:
  driver: "postgres"
  dsn: "postgres://yaml@db/learnify"
llm:
  provider: "openai"
  timeout: 30s
  openai:
    model: "gpt-4o"
generation:
  max_source_runes: 500
`)
	t.Setenv("LEARNIFY_PORT", "9100")
	t.Setenv("LEARNIFY_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LEARNIFY_JWT_SECRET", "from-env")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("expected Port=9100 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "staging" {
		t.Errorf("expected Env=staging (from yaml), got %s", cfg.Env)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://yaml@db/learnify" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.OpenAI.Model != "gpt-4o" {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.LLM.Timeout)
	}
	if cfg.Generation.MaxSourceRunes != 500 {
		t.Errorf("expected max_source_runes=500, got %d", cfg.Generation.MaxSourceRunes)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("expected JWT secret from env, got %q", cfg.Auth.JWTSecret)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoad_SecretsIgnoredInYAML(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
credentials_key: "leaked"
auth:
  jwt_secret: "leaked"
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CredentialsKey != "" || cfg.Auth.JWTSecret != "" {
		t.Errorf("secrets must only come from env, got key=%q jwt=%q", cfg.CredentialsKey, cfg.Auth.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		clearEnv(t)
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), "")
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		cfg.Auth.JWTSecret = "secret"
		cfg.CredentialsKey = "passphrase"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"missing credentials key", func(c *Config) { c.CredentialsKey = "" }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "llama" }},
		{"zero llm timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"zero source limit", func(c *Config) { c.Generation.MaxSourceRunes = 0 }},
		{"empty port", func(c *Config) { c.Port = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateStorage_SkipsSecrets(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite"}}
	if err := cfg.ValidateStorage(); err != nil {
		t.Errorf("expected sqlite without secrets to pass, got %v", err)
	}
}

func TestSettingsMapping(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEARNIFY_LLM_TIMEOUT", "5s")
	t.Setenv("LEARNIFY_LLM_MAX_TOKENS", "1024")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if got := cfg.LifecycleSettings().GenerationTimeout; got != 5*time.Second {
		t.Errorf("expected 5s generation timeout, got %s", got)
	}
	gen := cfg.GenerationSettings()
	if gen.MaxTokens != 1024 {
		t.Errorf("expected 1024 max tokens, got %d", gen.MaxTokens)
	}
	if gen.MaxSourceRunes != 20000 {
		t.Errorf("expected default source limit, got %d", gen.MaxSourceRunes)
	}
}
