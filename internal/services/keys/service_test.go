package keys_test

import (
	"context"
	"errors"
	"testing"

	"github.com/securelay/api/internal/domain"
	"github.com/securelay/api/internal/relay"
	"github.com/securelay/api/internal/relaytest"
	"github.com/securelay/api/internal/services/keys"
	"github.com/securelay/api/internal/store"
)

func setup(t *testing.T) (*relaytest.Relay, *relay.Client, *store.VaultFileStore) {
	t.Helper()
	rl := relaytest.New(t, 1)
	dir, err := relay.NewDirectory(map[string][]string{"alz2h": rl.URLs()})
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	rc, err := relay.NewWithDirectory(dir)
	if err != nil {
		t.Fatalf("NewWithDirectory: %v", err)
	}
	return rl, rc, store.NewVaultFileStore(t.TempDir())
}

func TestIssue_SavesAndResolvesAlias(t *testing.T) {
	rl, rc, vault := setup(t)
	svc := keys.New(rc, vault, rc.Keyring())
	ctx := context.Background()

	rec, err := svc.Issue(ctx, "pass", "inbox", "", domain.CallOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec.Endpoint != "alz2h" || rec.Private == "" || rec.Public == "" {
		t.Fatalf("unexpected record %+v", rec)
	}

	// A fresh client knows nothing; resolving the alias must seed its keyring.
	fresh, err := relay.NewWithDirectory(rc.Directory())
	if err != nil {
		t.Fatalf("NewWithDirectory: %v", err)
	}
	svc2 := keys.New(fresh, vault, fresh.Keyring())
	got, err := svc2.Resolve("pass", "@inbox")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Private != rec.Private || got.Endpoint != rec.Endpoint {
		t.Fatalf("resolved %+v, want %+v", got, rec)
	}
	if _, err := fresh.PublicURL(ctx, got.Private, got.Endpoint, domain.CallOptions{}); err != nil {
		t.Fatalf("PublicURL: %v", err)
	}
	if rl.Hits(relaytest.OpLookup) != 0 {
		t.Fatal("public url for a vaulted key hit the relay")
	}
}

func TestResolve_RawKeyAndUnknownAlias(t *testing.T) {
	_, rc, vault := setup(t)
	svc := keys.New(rc, vault, nil)

	rec, err := svc.Resolve("pass", "3zTryeMxkq")
	if err != nil || rec.Private != "3zTryeMxkq" || rec.Endpoint != "" {
		t.Fatalf("raw key: %+v %v", rec, err)
	}
	if _, err := svc.Resolve("pass", "@missing"); !errors.Is(err, keys.ErrUnknownAlias) {
		t.Fatalf("want ErrUnknownAlias, got %v", err)
	}
	if _, err := svc.Resolve("pass", ""); err == nil {
		t.Fatal("expected error for empty reference")
	}
}

func TestIssue_WithoutVault(t *testing.T) {
	_, rc, _ := setup(t)
	svc := keys.New(rc, nil, nil)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "", "", "alz2h", domain.CallOptions{}); err != nil {
		t.Fatalf("Issue without alias: %v", err)
	}
	if _, err := svc.Issue(ctx, "", "named", "alz2h", domain.CallOptions{}); err == nil {
		t.Fatal("expected error saving without a vault")
	}
	if _, err := svc.Issue(ctx, "", "", "unknown", domain.CallOptions{}); !errors.Is(err, relay.ErrUnknownEndpoint) {
		t.Fatalf("want ErrUnknownEndpoint, got %v", err)
	}
}

func TestPreload(t *testing.T) {
	_, rc, vault := setup(t)
	for _, r := range []domain.KeyRecord{
		{Alias: "a", Private: "pa", Public: "qa"},
		{Alias: "b", Private: "pb", Public: "qb"},
	} {
		if err := vault.SaveKey("pass", r); err != nil {
			t.Fatalf("SaveKey: %v", err)
		}
	}
	svc := keys.New(rc, vault, rc.Keyring())
	n, err := svc.Preload("pass")
	if err != nil || n != 2 {
		t.Fatalf("Preload: %d %v", n, err)
	}
	if pub, ok := rc.Keyring().Public("pb"); !ok || pub != "qb" {
		t.Fatalf("keyring not seeded: %q %v", pub, ok)
	}
}

func TestIssue_AliasTaken(t *testing.T) {
	rl, rc, vault := setup(t)
	svc := keys.New(rc, vault, rc.Keyring())
	ctx := context.Background()

	first, err := svc.Issue(ctx, "pass", "inbox", "", domain.CallOptions{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Issue(ctx, "pass", "inbox", "", domain.CallOptions{}); !errors.Is(err, keys.ErrAliasExists) {
		t.Fatalf("want ErrAliasExists, got %v", err)
	}
	if n := rl.Hits(relaytest.OpIssue); n != 1 {
		t.Fatalf("issued %d keys, want 1", n)
	}
	got, ok, err := vault.LoadKey("pass", "inbox")
	if err != nil || !ok || got.Private != first.Private {
		t.Fatalf("saved record replaced: %+v %v %v", got, ok, err)
	}
}
