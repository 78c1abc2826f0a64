package commands

import (
	"github.com/spf13/cobra"

	"github.com/securelay/api/internal/domain"
)

// sync <key>: fetch what others posted to the key's public URL.
func syncCmd() *cobra.Command {
	var webhook string
	cmd := &cobra.Command{
		Use:   "sync <key>",
		Short: "Fetch data posted to a key's public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, id, err := resolveKey(args[0])
			if err != nil {
				return err
			}
			data, err := appCtx.Relay.Sync(cmd.Context(), key, id, domain.SyncOptions{
				Webhook: webhook,
				Timeout: appCtx.Config.Timeout,
			})
			if err != nil {
				return err
			}
			render(cmd, data)
			return nil
		},
	}
	cmd.Flags().StringVar(&webhook, "webhook", "", "URL the relay should forward future posts to")
	return cmd
}
