package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/securelay/api/internal/domain"
)

// publish <key> <data>: publish data under key. "-" reads data from stdin.
func publishCmd() *cobra.Command {
	var (
		as       string
		field    string
		password string
	)
	cmd := &cobra.Command{
		Use:   "publish <key> <data|->",
		Short: "Publish text, JSON or form data under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, ok := domain.ParseEncoding(as)
			if !ok {
				return fmt.Errorf("unknown encoding %q (want text, json or form)", as)
			}
			raw := args[1]
			if raw == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				raw = string(b)
			}
			data, err := payload(enc, raw)
			if err != nil {
				return err
			}

			key, id, err := resolveKey(args[0])
			if err != nil {
				return err
			}
			out, err := appCtx.Relay.Publish(cmd.Context(), key, id, enc, data, domain.PublishOptions{
				Field:    field,
				Password: password,
				Timeout:  appCtx.Config.Timeout,
			})
			if err != nil {
				return err
			}
			render(cmd, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "text", "payload encoding: text, json or form")
	cmd.Flags().StringVar(&field, "field", "", "publish under a sub-path of the key")
	cmd.Flags().StringVar(&password, "password", "", "protect the published data with a password")
	return cmd
}

// payload converts command-line text into the value Publish expects.
func payload(enc domain.Encoding, raw string) (any, error) {
	switch enc {
	case domain.EncodingJSON:
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("data is not valid JSON")
		}
		return json.RawMessage(raw), nil
	case domain.EncodingForm:
		vals, err := url.ParseQuery(raw)
		if err != nil {
			return nil, fmt.Errorf("parse form data: %w", err)
		}
		return vals, nil
	default:
		return raw, nil
	}
}
