// Package config provides configuration loading and structs for the Synapse server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Ingest IngestConfig `yaml:"ingest"`
	Search SearchConfig `yaml:"search"`
	Web    WebConfig    `yaml:"web"`
	Watch  WatchConfig  `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig holds vector store connection settings and the local manifest path.
type StoreConfig struct {
	URL          string `yaml:"url"`
	Collection   string `yaml:"collection"`
	ManifestPath string `yaml:"manifest_path"`
}

// IngestConfig holds chunking, OCR, and seed ingestion settings.
type IngestConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	SeedDir      string   `yaml:"seed_dir"`
	OCREnabled   *bool    `yaml:"ocr_enabled"`
	OCRLanguages []string `yaml:"ocr_languages"`
}

// OCR reports whether OCR should be attempted; defaults to true when unset.
func (c *IngestConfig) OCR() bool {
	if c.OCREnabled != nil {
		return *c.OCREnabled
	}
	return true
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k"`
}

// WebConfig holds web-search fallback settings. An empty APIKey disables the
// fallback; that is a configuration state, not an error.
type WebConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// WatchConfig holds seed-folder watch settings.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads and parses the config file at path, applies defaults and
// environment overrides, and expands paths relative to the config directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	applyEnv(&cfg)

	configDir := filepath.Dir(path)
	cfg.Ingest.SeedDir = expandPath(cfg.Ingest.SeedDir, configDir)
	cfg.Store.ManifestPath = expandPath(cfg.Store.ManifestPath, configDir)
	return &cfg, nil
}

// Default returns the configuration used when no config file is present:
// defaults plus environment overrides, with paths relative to the working
// directory.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg
}

// expandPath resolves a relative path against configDir; empty and
// already-absolute paths are returned unchanged.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}
