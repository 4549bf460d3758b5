package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-hitster-cards/internal/auth"
)

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached Spotify access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			authenticator, err := auth.New(cfg.Spotify, auth.WithLogger(log))
			if err != nil {
				return err
			}
			if err := authenticator.Logout(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Spotify token cache cleared")
			return nil
		},
	}
}
