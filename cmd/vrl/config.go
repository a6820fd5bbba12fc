package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the optional host configuration. Both YAML and TOML are
// accepted, decided by extension.
type Config struct {
	// Program is the script path, overridable on the command line.
	Program string `yaml:"program" toml:"program"`

	// Strict escalates partial argument-type overlap to a compile error.
	Strict bool `yaml:"strict" toml:"strict"`

	// EnrichmentDB is the path of the SQLite database holding enrichment
	// tables. Empty disables the enrichment builtins.
	EnrichmentDB string `yaml:"enrichment_db" toml:"enrichment_db"`

	// OnError selects the disposition of records whose invocation failed:
	// "drop" or "keep" (keep emits the partially mutated event).
	OnError string `yaml:"on_error" toml:"on_error"`
}

// loadConfig reads path. An empty path probes the default names and returns
// a zero config when none exists.
func loadConfig(path string) (Config, error) {
	cfg := Config{OnError: "drop"}
	if path == "" {
		for _, candidate := range []string{"vrl.yaml", "vrl.yml", "vrl.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("config %s: unsupported extension", path)
	}
	if cfg.OnError == "" {
		cfg.OnError = "drop"
	}
	if cfg.OnError != "drop" && cfg.OnError != "keep" {
		return cfg, fmt.Errorf("config %s: on_error must be \"drop\" or \"keep\"", path)
	}
	return cfg, nil
}
