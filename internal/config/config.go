// Package config loads the engine configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arkival/trellis/internal/dialect"
)

// Config is the engine configuration.
type Config struct {
	// Store selects and parameterizes the store backend.
	Store StoreConfig `yaml:"store"`

	// Dialect names a built-in family or a profile loaded from
	// ProfileDir.
	Dialect string `yaml:"dialect"`

	// ProfileDir holds custom dialect profile .cue files; optional.
	ProfileDir string `yaml:"profileDir,omitempty"`

	// SimulateInference asks non-inferring dialects to emulate
	// subsumption with property paths.
	SimulateInference bool `yaml:"simulateInference"`

	// PageSize bounds the number of main resources per response.
	PageSize int `yaml:"pageSize"`
}

// StoreConfig parameterizes one backend.
type StoreConfig struct {
	// Kind is "http" or "embedded".
	Kind string `yaml:"kind"`

	// Endpoint is the SPARQL endpoint URL (http kind).
	Endpoint string `yaml:"endpoint,omitempty"`

	// Path is the SQLite database path (embedded kind).
	Path string `yaml:"path,omitempty"`

	// TimeoutSeconds bounds each store request (http kind).
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`
}

// Default returns the embedded-store default configuration.
func Default() Config {
	return Config{
		Store:    StoreConfig{Kind: "embedded", Path: "trellis.db"},
		Dialect:  "embedded",
		PageSize: 25,
	}
}

// Load reads and validates a YAML configuration file. Omitted fields
// keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	switch c.Store.Kind {
	case "embedded":
		if c.Store.Path == "" {
			return fmt.Errorf("embedded store requires a database path")
		}
	case "http":
		if c.Store.Endpoint == "" {
			return fmt.Errorf("http store requires an endpoint URL")
		}
	default:
		return fmt.Errorf("unknown store kind %q (want embedded or http)", c.Store.Kind)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("pageSize must be positive, got %d", c.PageSize)
	}
	return nil
}

// ResolveDialect resolves the configured dialect, consulting ProfileDir
// for custom profiles before the built-ins.
func (c Config) ResolveDialect() (dialect.Profile, error) {
	if c.ProfileDir != "" {
		profiles, err := dialect.LoadProfiles(c.ProfileDir)
		if err != nil {
			return dialect.Profile{}, err
		}
		for _, p := range profiles {
			if p.Name == c.Dialect {
				return p, nil
			}
		}
	}
	return dialect.BuiltIn(c.Dialect)
}
