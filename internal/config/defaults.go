package config

import "time"

// Default values applied to zero-valued fields after parsing.
const (
	DefaultHost          = "localhost"
	DefaultPort          = 8080
	DefaultStoreURL      = "http://localhost:8000"
	DefaultCollection    = "synapse_rag_v2"
	DefaultManifestPath  = "./data/manifest.db"
	DefaultChunkSize     = 800
	DefaultChunkOverlap  = 100
	DefaultSeedDir       = "./documents"
	DefaultTopK          = 5
	DefaultMaxTopK       = 50
	DefaultWatchDebounce = 2 * time.Second
)

// ApplyDefaults fills zero-valued fields with sane defaults so a partial or
// absent config file still yields a runnable configuration.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Store.URL == "" {
		cfg.Store.URL = DefaultStoreURL
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = DefaultCollection
	}
	if cfg.Store.ManifestPath == "" {
		cfg.Store.ManifestPath = DefaultManifestPath
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = DefaultChunkSize
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Ingest.SeedDir == "" {
		cfg.Ingest.SeedDir = DefaultSeedDir
	}
	if len(cfg.Ingest.OCRLanguages) == 0 {
		cfg.Ingest.OCRLanguages = []string{"eng"}
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = DefaultTopK
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = DefaultMaxTopK
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
