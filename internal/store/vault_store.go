package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/securelay/api/internal/domain"
)

const vaultFile = "keys.enc"

var (
	errNoPassphrase = errors.New("passphrase required")
	errBadAlias     = errors.New("alias must be non-empty and must not start with '@'")
)

// VaultFileStore keeps key records encrypted under a passphrase.
type VaultFileStore struct {
	dir string
	kdf scryptParams
	now func() time.Time
	mu  sync.Mutex
}

// NewVaultFileStore returns a VaultFileStore rooted at dir.
func NewVaultFileStore(dir string) *VaultFileStore {
	return &VaultFileStore{dir: dir, kdf: defaultScryptParams(), now: time.Now}
}

// Path returns the vault file location.
func (s *VaultFileStore) Path() string { return filepath.Join(s.dir, vaultFile) }

// SaveKey stores or replaces the record under rec.Alias.
func (s *VaultFileStore) SaveKey(passphrase string, rec domain.KeyRecord) error {
	if passphrase == "" {
		return errNoPassphrase
	}
	if rec.Alias == "" || strings.HasPrefix(rec.Alias, "@") {
		return errBadAlias
	}
	if rec.Private == "" {
		return fmt.Errorf("save key %q: empty private key", rec.Alias)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(passphrase)
	if err != nil {
		return err
	}
	recs[rec.Alias] = rec
	raw, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	defer wipe(raw)
	b, err := seal(passphrase, raw, s.kdf)
	if err != nil {
		return err
	}
	return writeFile(s.Path(), b, 0o600)
}

// LoadKey returns the record stored under alias.
func (s *VaultFileStore) LoadKey(passphrase, alias string) (domain.KeyRecord, bool, error) {
	if passphrase == "" {
		return domain.KeyRecord{}, false, errNoPassphrase
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(passphrase)
	if err != nil {
		return domain.KeyRecord{}, false, err
	}
	rec, ok := recs[alias]
	return rec, ok, nil
}

// ListKeys returns every record sorted by alias.
func (s *VaultFileStore) ListKeys(passphrase string) ([]domain.KeyRecord, error) {
	if passphrase == "" {
		return nil, errNoPassphrase
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(passphrase)
	if err != nil {
		return nil, err
	}
	out := make([]domain.KeyRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out, nil
}

// load decrypts the vault; a missing vault is empty.
func (s *VaultFileStore) load(passphrase string) (map[string]domain.KeyRecord, error) {
	recs := make(map[string]domain.KeyRecord)
	b, err := readFile(s.Path())
	if err != nil {
		return nil, err
	}
	if b == nil {
		return recs, nil
	}
	raw, err := open(passphrase, b)
	if err != nil {
		return nil, err
	}
	defer wipe(raw)
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode vault records: %w", err)
	}
	return recs, nil
}

// Compile-time assertion that VaultFileStore implements domain.KeyVault.
var _ domain.KeyVault = (*VaultFileStore)(nil)
