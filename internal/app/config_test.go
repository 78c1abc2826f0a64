package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/securelay/api/internal/relay"
	"github.com/securelay/api/internal/relaytest"
)

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DirectoryURL != relay.DefaultDirectoryURL || cfg.Timeout != 30*time.Second || cfg.Output != "table" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfig_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
endpoint: alz2h
timeout: 5s
output: json
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Endpoint != "alz2h" || cfg.Timeout != 5*time.Second || cfg.Output != "json" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log overrides not applied: %+v", cfg.Log)
	}
	if cfg.DirectoryURL != relay.DefaultDirectoryURL {
		t.Fatalf("unset key lost its default: %q", cfg.DirectoryURL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: -1s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for negative timeout")
	}
	if err := os.WriteFile(path, []byte("timeout: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestNewWire(t *testing.T) {
	rl := relaytest.New(t, 1)
	rl.SetDescriptor(map[string][]string{"alz2h": rl.URLs()})

	cfg := DefaultConfig()
	cfg.Home = t.TempDir()
	cfg.DirectoryURL = rl.DirectoryURL()
	w, err := NewWire(context.Background(), cfg, os.Stderr)
	if err != nil {
		t.Fatalf("NewWire: %v", err)
	}
	if w.Relay == nil || w.Keys == nil || w.Vault == nil {
		t.Fatalf("incomplete wire %+v", w)
	}
	if w.Vault.Path() != filepath.Join(cfg.Home, "keys.enc") {
		t.Fatalf("vault not under home: %s", w.Vault.Path())
	}
}

func TestNewWire_UnknownDefaultEndpoint(t *testing.T) {
	rl := relaytest.New(t, 1)
	rl.SetDescriptor(map[string][]string{"alz2h": rl.URLs()})

	cfg := DefaultConfig()
	cfg.Home = t.TempDir()
	cfg.DirectoryURL = rl.DirectoryURL()
	cfg.Endpoint = "nope"
	if _, err := NewWire(context.Background(), cfg, os.Stderr); !errors.Is(err, relay.ErrUnknownEndpoint) {
		t.Fatalf("want ErrUnknownEndpoint, got %v", err)
	}
}
