// Package relay provides an HTTP implementation of the domain.RelayClient
// interface for Securelay, a public store-and-forward relay for small pieces
// of data addressed by relay-issued keys.
//
// A Client owns three things:
//   - An endpoint directory mapping endpoint IDs to mirrored base URLs,
//     loaded once by New or supplied to NewWithDirectory.
//   - A keyring caching private-to-public key lookups for the lifetime of
//     the client.
//   - An HTTP client used for every call.
//
// Supported operations include:
//   - Issuing a new key pair and resolving private/public URLs for a key.
//   - Publishing form, JSON or text payloads, optionally password protected.
//   - Syncing data posted to a key's public URL, optionally via a webhook.
//   - Renewing and unpublishing previously published data.
//   - Reading per-endpoint properties such as push-notification app IDs.
//
// Every call resolves its endpoint afresh: when no endpoint ID is given a
// random one is drawn, and a random mirror is drawn for the ID. Non-2xx
// statuses are returned as *StatusError; deadlines come from the caller's
// context or the per-call Timeout and surface as context errors. The client
// never retries.
package relay
