package domain

import (
	"context"
	"encoding/json"
)

// RelayClient is how we talk to Securelay, all with context.
type RelayClient interface {
	Endpoint(id EndpointID) (string, EndpointID, error)

	IssueKey(ctx context.Context, id EndpointID, opts CallOptions) (string, error)
	IssueKeyPair(ctx context.Context, id EndpointID, opts CallOptions) (KeyPair, error)
	PrivateURL(key string, id EndpointID) (string, error)
	PublicURL(ctx context.Context, key string, id EndpointID, opts CallOptions) (string, error)

	Sync(ctx context.Context, key string, id EndpointID, opts SyncOptions) (json.RawMessage, error)
	Publish(
		ctx context.Context,
		key string,
		id EndpointID,
		enc Encoding,
		data any,
		opts PublishOptions,
	) (json.RawMessage, error)
	Unpublish(ctx context.Context, key string, id EndpointID, opts SecretOptions) error
	Renew(ctx context.Context, key string, id EndpointID, opts SecretOptions) (json.RawMessage, error)

	AppID(ctx context.Context, id EndpointID, app string, opts CallOptions) (string, error)
}

// KeyVault persists named key pairs between CLI invocations.
type KeyVault interface {
	SaveKey(passphrase string, rec KeyRecord) error
	LoadKey(passphrase, alias string) (KeyRecord, bool, error)
	ListKeys(passphrase string) ([]KeyRecord, error)
}
