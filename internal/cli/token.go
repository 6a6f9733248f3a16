package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quiz-result-service/internal/auth"
	"quiz-result-service/internal/config"
)

// NewTokenCmd mints a bearer token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed JWT for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret (JWT_SECRET) is required")
			}
			if role != auth.RoleUser && role != auth.RoleAdmin {
				return fmt.Errorf("role must be %s or %s", auth.RoleUser, auth.RoleAdmin)
			}

			token, err := auth.Issue(cfg.Auth.JWTSecret, cfg.Auth.Issuer, userID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id to embed in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleUser, "User or Admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
