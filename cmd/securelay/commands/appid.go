package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func appIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "appid <app>",
		Short: "Print the OneSignal app ID an endpoint uses for an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := appCtx.Relay.AppID(cmd.Context(), pickEndpoint(""), args[0], callOptions())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
