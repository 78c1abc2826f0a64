package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// url <private|public> <key>: print the URL of a key's resource.
func urlCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "url <private|public> <key>",
		Short:     "Print the private or public URL of a key",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"private", "public"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, id, err := resolveKey(args[1])
			if err != nil {
				return err
			}
			var u string
			switch args[0] {
			case "private":
				u, err = appCtx.Relay.PrivateURL(key, id)
			case "public":
				u, err = appCtx.Relay.PublicURL(cmd.Context(), key, id, callOptions())
			default:
				return fmt.Errorf("unknown url type %q (want private or public)", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}
