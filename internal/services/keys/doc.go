// Package keys issues relay keys and remembers them by alias.
//
// It sits between the relay client and the local vault: issued pairs can be
// saved under an alias, "@alias" references are resolved back to their
// private key and endpoint, and every pair it touches is fed to the client's
// keyring so public URLs need no extra lookup.
package keys
