package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/securelay/api/internal/domain"
	"github.com/securelay/api/internal/observability"
	"github.com/securelay/api/internal/relay"
	"github.com/securelay/api/internal/services/keys"
	"github.com/securelay/api/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config Config
	Log    *zap.Logger
	Relay  *relay.Client
	Vault  *store.VaultFileStore
	Keys   *keys.Service
}

// NewWire constructs the dependency graph from cfg. Loading the endpoint
// directory is the only network call made here.
func NewWire(ctx context.Context, cfg Config, stderr io.Writer) (*Wire, error) {
	log, err := observability.SetupLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}

	// The per-call Timeout handles deadlines; the client itself has none.
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	rc, err := relay.New(ctx,
		relay.WithDirectoryURL(cfg.DirectoryURL),
		relay.WithHTTPClient(httpClient),
		relay.WithLogger(log.Named("relay")),
	)
	if err != nil {
		return nil, err
	}
	if cfg.Endpoint != "" && !rc.Directory().Has(domain.EndpointID(cfg.Endpoint)) {
		return nil, fmt.Errorf("default endpoint: %w", &relay.EndpointError{ID: cfg.Endpoint})
	}
	log.Debug("wired", zap.Strings("endpoints", endpointNames(rc)), zap.String("home", cfg.Home))

	vault := store.NewVaultFileStore(cfg.Home)
	return &Wire{
		Config: cfg,
		Log:    log,
		Relay:  rc,
		Vault:  vault,
		Keys:   keys.New(rc, vault, rc.Keyring()),
	}, nil
}

func endpointNames(rc *relay.Client) []string {
	ids := rc.Directory().IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
