package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9000
store:
  url: http://chroma:8000
  collection: custom
ingest:
  chunk_size: 1000
  chunk_overlap: 200
  seed_dir: ./seeds
  ocr_enabled: false
watch:
  enabled: true
  debounce: 5s
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("server: %+v", cfg.Server)
	}
	if cfg.Store.URL != "http://chroma:8000" || cfg.Store.Collection != "custom" {
		t.Errorf("store: %+v", cfg.Store)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("ingest: %+v", cfg.Ingest)
	}
	if cfg.Ingest.OCR() {
		t.Error("ocr_enabled: false not honored")
	}
	if cfg.Ingest.SeedDir != filepath.Join(dir, "seeds") {
		t.Errorf("seed dir not expanded: %q", cfg.Ingest.SeedDir)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != 5*time.Second {
		t.Errorf("watch: %+v", cfg.Watch)
	}
}

func TestLoad_DefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: false\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("port: got %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Store.Collection != DefaultCollection {
		t.Errorf("collection: got %q", cfg.Store.Collection)
	}
	if cfg.Ingest.ChunkSize != DefaultChunkSize || cfg.Ingest.ChunkOverlap != DefaultChunkOverlap {
		t.Errorf("chunking: %+v", cfg.Ingest)
	}
	if !cfg.Ingest.OCR() {
		t.Error("OCR should default to enabled")
	}
	if cfg.Search.DefaultTopK != DefaultTopK || cfg.Search.MaxTopK != DefaultMaxTopK {
		t.Errorf("search: %+v", cfg.Search)
	}
	if cfg.Store.ManifestPath != filepath.Join(dir, "data", "manifest.db") {
		t.Errorf("manifest path not expanded: %q", cfg.Store.ManifestPath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SYNAPSE_STORE_URL", "http://elsewhere:9001")
	t.Setenv("SYNAPSE_PORT", "7777")
	t.Setenv("SYNAPSE_CHUNK_SIZE", "1200")
	t.Setenv("SYNAPSE_CHUNK_OVERLAP", "150")
	t.Setenv("SERPER_API_KEY", "test-key")

	cfg := Default()
	if cfg.Store.URL != "http://elsewhere:9001" {
		t.Errorf("store url: got %q", cfg.Store.URL)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 1200 || cfg.Ingest.ChunkOverlap != 150 {
		t.Errorf("chunking: %+v", cfg.Ingest)
	}
	if cfg.Web.APIKey != "test-key" {
		t.Errorf("api key: got %q", cfg.Web.APIKey)
	}
}

func TestEnvOverrides_ExplicitKeyWins(t *testing.T) {
	t.Setenv("SYNAPSE_WEB_API_KEY", "explicit")
	t.Setenv("SERPER_API_KEY", "fallback")
	cfg := Default()
	if cfg.Web.APIKey != "explicit" {
		t.Errorf("api key: got %q, want explicit", cfg.Web.APIKey)
	}
}
