package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/soteriahealth/soteria/utils"
)

// NewHashKeyCmd creates the hash-key command.
func NewHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <admin-key>",
		Short: "Print the bcrypt hash of an admin key",
		Long:  `Print the value to store in auth.admin_key_hash (SOTERIA_AUTH_ADMIN_KEY_HASH).`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HashKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

var (
	tokenUser string
	tokenTTL  time.Duration
)

// NewTokenCmd creates the token command.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a local access token",
		Long: `Sign an access token with the configured JWT secret. Meant for local
development against a sqlite database; production tokens come from the
hosted auth service.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(tokenUser)
			if err != nil || userID == uuid.Nil {
				return fmt.Errorf("--user must be a UUID, got %q", tokenUser)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}
			tok, err := utils.GenerateToken(cfg.JWTSecret, userID, tokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenUser, "user", "", "user UUID for the token subject (required)")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
