package relay

import "sync"

// Keyring caches the public key paired with each private key seen by a
// client. Entries are never removed; a later write for the same private key
// carries the same value, so last-write-wins is fine.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string]string)}
}

// Public returns the public key for private, if known.
func (k *Keyring) Public(private string) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pub, ok := k.keys[private]
	return pub, ok
}

// Put records the pair.
func (k *Keyring) Put(private, public string) {
	if private == "" || public == "" {
		return
	}
	k.mu.Lock()
	k.keys[private] = public
	k.mu.Unlock()
}

// Len returns the number of cached pairs.
func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}
