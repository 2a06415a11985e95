package config

import (
	"os"
	"strconv"
)

// applyEnv overlays SYNAPSE_* environment variables on top of the file
// configuration. Secrets such as the web-search API key are expected to arrive
// this way rather than through the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SYNAPSE_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SYNAPSE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SYNAPSE_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}
	if v := os.Getenv("SYNAPSE_STORE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("SYNAPSE_COLLECTION"); v != "" {
		cfg.Store.Collection = v
	}
	if v := os.Getenv("SYNAPSE_SEED_DIR"); v != "" {
		cfg.Ingest.SeedDir = v
	}
	if v := os.Getenv("SYNAPSE_CHUNK_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			cfg.Ingest.ChunkSize = size
		}
	}
	if v := os.Getenv("SYNAPSE_CHUNK_OVERLAP"); v != "" {
		if overlap, err := strconv.Atoi(v); err == nil && overlap >= 0 {
			cfg.Ingest.ChunkOverlap = overlap
		}
	}
	if v := os.Getenv("SYNAPSE_WEB_API_KEY"); v != "" {
		cfg.Web.APIKey = v
	} else if v := os.Getenv("SERPER_API_KEY"); v != "" {
		cfg.Web.APIKey = v
	}
}
