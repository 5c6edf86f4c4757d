package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/security"
)

func newTokenCommand() *cobra.Command {
	var userID, email string
	var privileged bool
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("LEDGER_JWT_SECRET")
			if secret == "" {
				return errors.New("LEDGER_JWT_SECRET must be set")
			}
			user := id.New()
			if userID != "" {
				var err error
				if user, err = parseID("user", userID); err != nil {
					return err
				}
			}

			jwtCfg := security.DefaultJWTConfig(secret)
			if ttl > 0 {
				jwtCfg.AccessTokenTTL = ttl
			}
			token, expires, err := security.NewJWTService(jwtCfg).
				GenerateAccessToken(entity.Actor{UserID: user, Privileged: privileged}, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "user %s, expires %s\n", user, expires.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (random when empty)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().BoolVar(&privileged, "privileged", false, "mark the user as an administrator")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from the JWT config)")

	return cmd
}
