package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/palletepro/palletepro/internal/session"
)

func newTokenCmd(envFiles *[]string) *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with JWT_SECRET, for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg, _, err := loadConfig(*envFiles)
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("refusing to issue tokens in production")
			}
			v, err := session.NewVerifier(cfg.Session)
			if err != nil {
				return err
			}
			tok, err := v.Issue(session.User{ID: userID, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the sub claim")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
