/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads the storage service configuration file.
//
// The file is shared by the commissaire services. It is YAML or JSON; only
// the keys below are read and the rest belong to other services:
//
//	debug: false
//	storage-handlers:
//	  - type: memory
//	    models: ["*"]
//	  - type: vault
//	    name: secrets
//	    address: https://vault.example.com:8200
//	    models: ["HostCreds"]
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/commissaire/errors"
)

// Locations consulted when no path is given.
const (
	EnvConfigPath     = "COMMISSAIRE_CONFIG"
	DefaultConfigPath = "/etc/commissaire/commissaire.conf"
)

// Config is the storage service configuration.
type Config struct {
	Debug bool `yaml:"debug"`
	// StorageHandlers holds one entry per store handler, each with a "type"
	// selector, an optional "models" pattern list and handler settings.
	StorageHandlers []map[string]any `yaml:"storage-handlers"`
}

// Entries returns the store handler entries in the form accepted by
// commissaire.NewService.
func (c *Config) Entries() []any {
	out := make([]any, len(c.StorageHandlers))
	for i, h := range c.StorageHandlers {
		out[i] = h
	}
	return out
}

// Load reads the configuration at path. An empty path falls back to
// $COMMISSAIRE_CONFIG, then DefaultConfigPath if that file exists, then an
// empty configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err != nil {
			return &Config{}, nil
		}
		path = DefaultConfigPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewConfigurationError("", fmt.Sprintf("cannot read %s: %v", path, err))
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Top-level keys other than "debug"
// and "storage-handlers" are ignored.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigurationError("", fmt.Sprintf("invalid configuration: %v", err))
	}

	for i, entry := range cfg.StorageHandlers {
		if entry == nil {
			return nil, errors.NewConfigurationError("", fmt.Sprintf("storage-handlers[%d] is empty", i))
		}
		if _, ok := entry["type"].(string); !ok {
			return nil, errors.NewConfigurationError("", fmt.Sprintf(`storage-handlers[%d] missing "type" key`, i))
		}
	}
	return cfg, nil
}

// LoadEnv loads environment variables from .env files, ".env" when none are
// given. Variables already set are kept. A missing default file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.NewConfigurationError("", fmt.Sprintf("cannot load environment file: %v", err))
	}
	return nil
}
