package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit config file is given.
const DefaultPath = "./minirag.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MINIRAG_"

// Load builds the configuration from defaults, then the YAML file, then
// MINIRAG_* environment variables, and validates the result. An explicit
// path must exist; the default path is optional.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := loadFromFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	cfg.Store.Type = strings.ToLower(strings.TrimSpace(cfg.Store.Type))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile decodes YAML over cfg so absent keys keep their defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	envMappings := map[string]func(string) error{
		"SERVER_ADDR":          func(v string) error { cfg.Server.Addr = v; return nil },
		"OLLAMA_BASE_URL":      func(v string) error { cfg.Ollama.BaseURL = v; return nil },
		"OLLAMA_MODEL":         func(v string) error { cfg.Ollama.Model = v; return nil },
		"OLLAMA_EMBED_MODEL":   func(v string) error { cfg.Ollama.EmbedModel = v; return nil },
		"OLLAMA_TIMEOUT":       func(v string) error { return parseDuration(v, &cfg.Ollama.Timeout) },
		"STORE_TYPE":           func(v string) error { cfg.Store.Type = v; return nil },
		"STORE_PATH":           func(v string) error { cfg.Store.Path = v; return nil },
		"STORE_COLLECTION":     func(v string) error { cfg.Store.Collection = v; return nil },
		"STORE_QDRANT_URL":     func(v string) error { cfg.Store.QdrantURL = v; return nil },
		"STORE_QDRANT_API_KEY": func(v string) error { cfg.Store.QdrantAPIKey = v; return nil },
		"WATCH_DIR":            func(v string) error { cfg.Watch.Dir = v; return nil },
		"WATCH_EXTENSIONS":     func(v string) error { cfg.Watch.Extensions = splitList(v); return nil },
	}

	for name, setter := range envMappings {
		envVar := EnvPrefix + name
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
