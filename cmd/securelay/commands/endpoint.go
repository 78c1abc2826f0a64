package commands

import (
	"github.com/spf13/cobra"

	"github.com/securelay/api/internal/domain"
)

type endpointView struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	URL      string `json:"url" yaml:"url"`
}

func endpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint [id]",
		Short: "Print a relay base URL and its endpoint ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := pickEndpoint("")
			if len(args) == 1 {
				id = domain.EndpointID(args[0])
			}
			base, resolved, err := appCtx.Relay.Endpoint(id)
			if err != nil {
				return err
			}
			render(cmd, endpointView{Endpoint: resolved.String(), URL: base})
			return nil
		},
	}
}
