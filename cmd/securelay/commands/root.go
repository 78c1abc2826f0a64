package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/securelay/api/internal/app"
	"github.com/securelay/api/internal/domain"
	"github.com/securelay/api/internal/output"
)

var (
	cfgFile      string
	home         string
	passphrase   string
	endpointFlag string
	directoryURL string
	outputFormat string
	logLevel     string
	timeout      time.Duration

	appCtx    *app.Wire
	formatter output.Formatter
)

// Execute runs the CLI with ctx.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "securelay",
		Short:         "Publish, fetch and sync small data through Securelay",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				path = app.DefaultConfigPath()
			}
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return err
			}

			// Override config with flags
			flags := cmd.Flags()
			if home != "" {
				cfg.Home = home
			}
			if endpointFlag != "" {
				cfg.Endpoint = endpointFlag
			}
			if directoryURL != "" {
				cfg.DirectoryURL = directoryURL
			}
			if outputFormat != "" {
				cfg.Output = outputFormat
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}

			appCtx, err = app.NewWire(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			formatter = output.NewFormatter(cfg.Output)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				_ = appCtx.Log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.securelay/config.yaml)")
	pf.StringVar(&home, "home", "", "vault dir (default ~/.securelay)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the key vault")
	pf.StringVarP(&endpointFlag, "endpoint", "e", "", "endpoint ID (default: random, or the key's own)")
	pf.StringVar(&directoryURL, "directory", "", "endpoint directory URL")
	pf.StringVarP(&outputFormat, "output", "o", "", "output format: table, json, yaml")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.DurationVar(&timeout, "timeout", 0, "per-request timeout, 0 for none")

	root.AddCommand(
		endpointCmd(),
		keyCmd(),
		urlCmd(),
		syncCmd(),
		publishCmd(),
		unpublishCmd(),
		renewCmd(),
		appIDCmd(),
	)
	return root
}

// resolveKey turns a key argument into its private key and the endpoint to
// use: the --endpoint flag, else the endpoint the key was saved with, else
// the configured default. With a passphrase, raw keys that are also saved
// get their public half from the vault instead of the relay.
func resolveKey(ref string) (string, domain.EndpointID, error) {
	if passphrase != "" && !strings.HasPrefix(ref, "@") {
		if _, err := appCtx.Keys.Preload(passphrase); err != nil {
			return "", "", err
		}
	}
	rec, err := appCtx.Keys.Resolve(passphrase, ref)
	if err != nil {
		return "", "", err
	}
	return rec.Private, pickEndpoint(rec.Endpoint), nil
}

func pickEndpoint(saved domain.EndpointID) domain.EndpointID {
	if endpointFlag != "" {
		return domain.EndpointID(endpointFlag)
	}
	if saved != "" {
		return saved
	}
	return domain.EndpointID(appCtx.Config.Endpoint)
}

func callOptions() domain.CallOptions {
	return domain.CallOptions{Timeout: appCtx.Config.Timeout}
}

func render(cmd *cobra.Command, v any) {
	fmt.Fprint(cmd.OutOrStdout(), formatter.Format(v))
}
