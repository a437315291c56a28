package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnify/learnify/internal/identity"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the acting user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("LEARNIFY_JWT_SECRET is required")
		}

		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl == 0 {
			ttl = cfg.Auth.TokenTTL
		}
		name, _ := cmd.Flags().GetString("name")

		issuer, err := identity.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
		if err != nil {
			return err
		}
		tok, err := issuer.Issue(actingUser(cmd), name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from config)")
	tokenCmd.Flags().String("name", "", "Display name claim")
}
