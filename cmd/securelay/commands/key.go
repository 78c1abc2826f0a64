package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type keyView struct {
	Alias    string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Private  string `json:"private" yaml:"private"`
	Public   string `json:"public" yaml:"public"`
	Created  string `json:"created" yaml:"created"`
}

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Issue and list relay keys",
	}
	cmd.AddCommand(keyNewCmd(), keyListCmd())
	return cmd
}

func keyNewCmd() *cobra.Command {
	var alias string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Issue a new key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if alias != "" && passphrase == "" {
				return fmt.Errorf("passphrase required (-p) to save a key")
			}
			rec, err := appCtx.Keys.Issue(cmd.Context(), passphrase, alias, pickEndpoint(""), callOptions())
			if err != nil {
				return err
			}
			render(cmd, keyView{
				Alias:    rec.Alias,
				Endpoint: rec.Endpoint.String(),
				Private:  rec.Private,
				Public:   rec.Public,
				Created:  rec.CreatedAt.Format(time.RFC3339),
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&alias, "save", "", "save the pair in the vault under this alias (must not already exist)")
	return cmd
}

func keyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List key pairs saved in the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			recs, err := appCtx.Keys.List(passphrase)
			if err != nil {
				return err
			}
			views := make([]keyView, 0, len(recs))
			for _, r := range recs {
				views = append(views, keyView{
					Alias:    r.Alias,
					Endpoint: r.Endpoint.String(),
					Private:  r.Private,
					Public:   r.Public,
					Created:  r.CreatedAt.Format(time.RFC3339),
				})
			}
			render(cmd, views)
			return nil
		},
	}
}
