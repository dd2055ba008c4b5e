package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"keepsake/internal/identity"
	id "keepsake/pkg/domain"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens",
	}

	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue <identity>",
		Short: "Sign a bearer token for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			subject, err := id.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := identity.NewTokenService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer).Issue(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to auth.token_ttl)")
	cmd.AddCommand(issue)
	return cmd
}
