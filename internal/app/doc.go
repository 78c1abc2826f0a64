// Package app wires application dependencies for the CLI.
//
// It loads Config from YAML, then builds the logger, relay client, key vault
// and key service, exposing them via the Wire struct for commands to use.
package app
