// Package config loads minirag settings from defaults, YAML and environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreQdrant = "qdrant"
)

// Config is the root application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Ollama OllamaConfig `yaml:"ollama"`
	Store  StoreConfig  `yaml:"store"`
	Watch  WatchConfig  `yaml:"watch"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// OllamaConfig points at the Ollama instance used for embeddings and answers.
type OllamaConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	EmbedModel string        `yaml:"embed_model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// StoreConfig selects and configures the vector store.
type StoreConfig struct {
	Type         string `yaml:"type"`
	Path         string `yaml:"path"`
	Collection   string `yaml:"collection"`
	QdrantURL    string `yaml:"qdrant_url"`
	QdrantAPIKey string `yaml:"qdrant_api_key"`
}

// WatchConfig enables the inbox directory watcher when Dir is set.
type WatchConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			Model:      "tinyllama",
			EmbedModel: "nomic-embed-text",
			Timeout:    300 * time.Second,
		},
		Store: StoreConfig{
			Type:       StoreSQLite,
			Path:       "./db",
			Collection: "docs",
			QdrantURL:  "http://localhost:6333",
		},
		Watch: WatchConfig{
			Extensions: []string{".txt", ".md", ".markdown"},
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	if _, err := url.ParseRequestURI(c.Ollama.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("ollama.base_url: %w", err))
	}
	if c.Ollama.Model == "" {
		errs = append(errs, errors.New("ollama.model is required"))
	}
	if c.Ollama.EmbedModel == "" {
		errs = append(errs, errors.New("ollama.embed_model is required"))
	}
	if c.Ollama.Timeout <= 0 {
		errs = append(errs, errors.New("ollama.timeout must be positive"))
	}

	switch strings.ToLower(c.Store.Type) {
	case StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for sqlite"))
		}
	case StoreMemory:
	case StoreQdrant:
		if _, err := url.ParseRequestURI(c.Store.QdrantURL); err != nil {
			errs = append(errs, fmt.Errorf("store.qdrant_url: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type %q is not one of sqlite, memory, qdrant", c.Store.Type))
	}
	if c.Store.Collection == "" {
		errs = append(errs, errors.New("store.collection is required"))
	}

	return errors.Join(errs...)
}
