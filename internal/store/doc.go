// Package store provides file-based persistence for the securelay CLI.
//
// The only store is the key vault: a passphrase-encrypted JSON document that
// remembers relay-issued key pairs under short aliases, so a key issued in
// one invocation can be used by name in the next. Files live under the
// configured home directory and are replaced atomically on every write.
package store
