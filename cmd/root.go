package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnify/learnify/internal/config"
	"github.com/learnify/learnify/internal/crypto"
	"github.com/learnify/learnify/internal/generation"
	"github.com/learnify/learnify/internal/lifecycle"
	"github.com/learnify/learnify/internal/llm"
	"github.com/learnify/learnify/internal/logging"
	"github.com/learnify/learnify/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "learnify",
	Short:         "Personalised learning paths with prerequisite-gated topics",
	Long:          "Learnify builds a topic graph for anything you want to learn and unlocks lessons as you complete their prerequisites.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path or postgres DSN (overrides LEARNIFY_DB_DSN)")
	rootCmd.PersistentFlags().String("user", envOr("LEARNIFY_USER", "local"), "Acting user ID for local commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(subjectCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads the config file named by --config and applies --db.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, version)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.DSN = db
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDSN returns the database DSN, defaulting SQLite to the XDG data
// directory.
func resolveDSN(cfg *config.Config) (string, error) {
	if dsn := cfg.Database.DSN; dsn != "" {
		if cfg.Database.Driver == store.DriverSQLite && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			return dsn, store.EnsureDir(dsn)
		}
		return dsn, nil
	}
	if cfg.Database.Driver == store.DriverPostgres {
		return "", fmt.Errorf("postgres requires a DSN")
	}
	return store.DefaultDBPath()
}

func actingUser(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}

// app bundles the dependencies shared by local commands.
type app struct {
	cfg    *config.Config
	store  *store.Store
	logger *logging.Logger
	mgr    *lifecycle.Manager
}

// setup opens the store and wires the lifecycle manager.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	mode := "development"
	if cfg.IsProduction() {
		mode = "production"
	}
	logger, err := logging.New(mode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cmd.Context(), cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var cipher lifecycle.Cipher = missingKeyCipher{}
	if cfg.CredentialsKey != "" {
		c, err := crypto.NewCipher(cfg.CredentialsKey)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("credentials key: %w", err)
		}
		cipher = c
	}

	factory := llm.NewFactory(cfg.LLM, st.EventRepo(), logger)
	gen := generation.New(factory, cfg.GenerationSettings())
	mgr := lifecycle.NewManager(st, gen, cipher, logger, cfg.LifecycleSettings())

	return &app{cfg: cfg, store: st, logger: logger, mgr: mgr}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.logger.Sync()
}

var errNoCredentialsKey = errors.New("LEARNIFY_CREDENTIALS_KEY is not set")

// missingKeyCipher lets commands that never touch API keys run without
// a credentials key.
type missingKeyCipher struct{}

func (missingKeyCipher) Encrypt(string) (string, error) { return "", errNoCredentialsKey }
func (missingKeyCipher) Decrypt(string) (string, error) { return "", errNoCredentialsKey }

// openStore opens the configured database without wiring the manager.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cmd.Context(), cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
