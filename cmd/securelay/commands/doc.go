// Package commands defines the securelay CLI and wires dependencies for subcommands.
//
// Commands
//
//   - endpoint       Print a relay base URL and its endpoint ID
//   - key new        Issue a key pair, optionally saved under an alias
//   - key list       List saved key pairs
//   - url            Print the private or public URL of a key
//   - sync           Fetch data posted to a key's public URL
//   - publish        Publish text, JSON or form data under a key
//   - unpublish      Remove published data
//   - renew          Extend the expiry of published data
//   - appid          Print an endpoint's web-push app ID
//
// Keys may be given raw or as @alias, which is read from the encrypted vault
// in the home directory (passphrase via -p).
//
// # Implementation
//
// The root command loads the YAML config, applies flag overrides and builds
// the dependency graph (logger, relay client, vault, key service) before any
// subcommand runs. Loading the endpoint directory happens there, so a broken
// directory fails every command up front.
package commands
