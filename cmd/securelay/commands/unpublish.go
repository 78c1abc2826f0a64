package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securelay/api/internal/domain"
)

func unpublishCmd() *cobra.Command {
	var secret bool
	cmd := &cobra.Command{
		Use:   "unpublish <key>",
		Short: "Remove data published under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, id, err := resolveKey(args[0])
			if err != nil {
				return err
			}
			err = appCtx.Relay.Unpublish(cmd.Context(), key, id, domain.SecretOptions{
				Secret:  secret,
				Timeout: appCtx.Config.Timeout,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "unpublished")
			return nil
		},
	}
	cmd.Flags().BoolVar(&secret, "secret", false, "target the password-protected copy")
	return cmd
}

func renewCmd() *cobra.Command {
	var secret bool
	cmd := &cobra.Command{
		Use:   "renew <key>",
		Short: "Extend the expiry of data published under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, id, err := resolveKey(args[0])
			if err != nil {
				return err
			}
			out, err := appCtx.Relay.Renew(cmd.Context(), key, id, domain.SecretOptions{
				Secret:  secret,
				Timeout: appCtx.Config.Timeout,
			})
			if err != nil {
				return err
			}
			render(cmd, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&secret, "secret", false, "target the password-protected copy")
	return cmd
}
