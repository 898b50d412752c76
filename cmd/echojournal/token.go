package main

import (
	"errors"
	"time"

	"github.com/lukasbauer/echojournal/internal/app"
	"github.com/lukasbauer/echojournal/internal/httpapi"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		output string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <owner>",
		Short: "Issue a session token for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set, the server accepts anonymous sessions")
			}
			if ttl <= 0 {
				ttl = cfg.JWTExpiry
			}
			token, expires, err := httpapi.IssueToken(cfg.JWTSecret, args[0], ttl)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), output, map[string]any{
				"token":      token,
				"owner":      args[0],
				"expires_at": expires.UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRY)")
	return cmd
}
