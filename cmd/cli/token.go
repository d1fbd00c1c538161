package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/memohai/pixeltools/internal/auth"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the debug HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.load(cmd)
			if err != nil {
				return err
			}
			if rt.rc.JwtSecret == "" {
				return fmt.Errorf("server.jwt_secret is not set")
			}
			signed, expiresAt, err := auth.GenerateToken(subject, rt.rc.JwtSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
