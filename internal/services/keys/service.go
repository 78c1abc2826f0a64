package keys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/securelay/api/internal/domain"
)

var (
	// ErrUnknownAlias is returned when an @alias is not in the vault.
	ErrUnknownAlias = errors.New("unknown key alias")

	// ErrAliasExists is returned by Issue when the alias is already saved.
	ErrAliasExists = errors.New("key alias already in use")
)

// KeyCache receives known key pairs. *relay.Keyring satisfies it.
type KeyCache interface {
	Put(private, public string)
}

// Service manages relay keys for the CLI.
type Service struct {
	relay domain.RelayClient
	vault domain.KeyVault
	cache KeyCache
	now   func() time.Time
}

// New returns a key service. vault and cache may be nil.
func New(rc domain.RelayClient, vault domain.KeyVault, cache KeyCache) *Service {
	return &Service{relay: rc, vault: vault, cache: cache, now: time.Now}
}

// Issue requests a new key pair from endpoint id. When alias is set the pair
// is also saved to the vault under passphrase; an alias already in the vault
// is refused before any key is issued.
func (s *Service) Issue(
	ctx context.Context,
	passphrase, alias string,
	id domain.EndpointID,
	opts domain.CallOptions,
) (domain.KeyRecord, error) {
	if alias != "" && s.vault == nil {
		return domain.KeyRecord{}, fmt.Errorf("save key %q: no vault configured", alias)
	}
	if alias != "" {
		_, taken, err := s.vault.LoadKey(passphrase, alias)
		if err != nil {
			return domain.KeyRecord{}, err
		}
		if taken {
			return domain.KeyRecord{}, fmt.Errorf("save key %q: %w", alias, ErrAliasExists)
		}
	}
	// Keys are only valid on the endpoint that issued them, so pin one.
	_, resolved, err := s.relay.Endpoint(id)
	if err != nil {
		return domain.KeyRecord{}, err
	}
	kp, err := s.relay.IssueKeyPair(ctx, resolved, opts)
	if err != nil {
		return domain.KeyRecord{}, err
	}
	rec := domain.KeyRecord{
		Alias:     alias,
		Private:   kp.Private,
		Public:    kp.Public,
		Endpoint:  resolved,
		CreatedAt: s.now().UTC(),
	}
	if alias != "" {
		if err := s.vault.SaveKey(passphrase, rec); err != nil {
			return domain.KeyRecord{}, fmt.Errorf("save key %q: %w", alias, err)
		}
	}
	return rec, nil
}

// Resolve turns a key reference into a record. "@name" is read from the
// vault; anything else is taken as a raw private key.
func (s *Service) Resolve(passphrase, ref string) (domain.KeyRecord, error) {
	alias, isAlias := strings.CutPrefix(ref, "@")
	if !isAlias {
		if ref == "" {
			return domain.KeyRecord{}, errors.New("empty key")
		}
		return domain.KeyRecord{Private: ref}, nil
	}
	if s.vault == nil {
		return domain.KeyRecord{}, fmt.Errorf("resolve %s: no vault configured", ref)
	}
	rec, ok, err := s.vault.LoadKey(passphrase, alias)
	if err != nil {
		return domain.KeyRecord{}, err
	}
	if !ok {
		return domain.KeyRecord{}, fmt.Errorf("resolve %s: %w", ref, ErrUnknownAlias)
	}
	if s.cache != nil {
		s.cache.Put(rec.Private, rec.Public)
	}
	return rec, nil
}

// List returns the saved records.
func (s *Service) List(passphrase string) ([]domain.KeyRecord, error) {
	if s.vault == nil {
		return nil, nil
	}
	return s.vault.ListKeys(passphrase)
}

// Preload feeds every saved pair to the keyring and returns how many there were.
func (s *Service) Preload(passphrase string) (int, error) {
	recs, err := s.List(passphrase)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		for _, r := range recs {
			s.cache.Put(r.Private, r.Public)
		}
	}
	return len(recs), nil
}
