package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnify/learnify/internal/identity"
	"github.com/learnify/learnify/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		verifier, err := identity.NewVerifier(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Addr:        a.cfg.Addr(),
			CORSOrigins: a.cfg.CORSOrigins,
			Production:  a.cfg.IsProduction(),
		}, a.mgr, a.store, verifier, a.logger)

		a.logger.Info("Starting learnify",
			"version", version,
			"env", a.cfg.Env,
			"db_driver", a.cfg.Database.Driver,
			"llm_provider", a.cfg.LLM.Provider,
		)
		return srv.Run(cmd.Context())
	},
}
