package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/securelay/api/internal/observability"
	"github.com/securelay/api/internal/relay"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home         string                  `yaml:"home"`          // vault directory, e.g. $HOME/.securelay
	DirectoryURL string                  `yaml:"directory_url"` // endpoint descriptor location
	Endpoint     string                  `yaml:"endpoint"`      // default endpoint ID; empty means random
	Timeout      time.Duration           `yaml:"timeout"`       // per-call deadline; 0 disables
	Output       string                  `yaml:"output"`        // table, json or yaml
	Log          observability.LogConfig `yaml:"log"`
	HTTP         *http.Client            `yaml:"-"` // optional; defaults to a client with Timeout
}

// DefaultConfig returns the settings used when no file overrides them.
func DefaultConfig() Config {
	return Config{
		Home:         defaultHome(),
		DirectoryURL: relay.DefaultDirectoryURL,
		Timeout:      30 * time.Second,
		Output:       "table",
		Log:          observability.LogConfig{Level: "warn", Format: "console", Outputs: []string{"stderr"}},
	}
}

// DefaultConfigPath is $HOME/.securelay/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(defaultHome(), "config.yaml")
}

// LoadConfig reads path over the defaults; a missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Timeout < 0 {
		return cfg, fmt.Errorf("parse config %s: negative timeout %s", path, cfg.Timeout)
	}
	return cfg, nil
}

func defaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".securelay"
	}
	return filepath.Join(dir, ".securelay")
}
