package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/synapse/internal/extract"
	"github.com/hyperjump/synapse/internal/ingest"
	"github.com/hyperjump/synapse/internal/models"
	"github.com/hyperjump/synapse/internal/store"
	"go.uber.org/zap"
)

func newSeeder(t *testing.T, dir string) (*Seeder, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	pipeline := ingest.NewPipeline(mem, extract.NewExtractor(), 500, 50)
	return New(mem, pipeline, dir, zap.NewNop()), mem
}

func TestRunIfEmpty_SeedsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "intro.txt"), []byte("welcome to the knowledge base"), 0600); err != nil {
		t.Fatal(err)
	}
	s, mem := newSeeder(t, dir)
	if err := s.RunIfEmpty(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := mem.Query(context.Background(), "knowledge", 5, store.Filter{UserID: SeedUser})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("seed fragments: got %d, want 1", len(got))
	}
	if got[0].UserID != SeedUser || got[0].Domain != models.GeneralDomain {
		t.Errorf("seed scope: %+v", got[0])
	}
}

func TestRunIfEmpty_SkipsPopulatedStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "intro.txt"), []byte("seed content"), 0600); err != nil {
		t.Fatal(err)
	}
	s, mem := newSeeder(t, dir)
	err := mem.Add(context.Background(), []models.Fragment{
		{ID: "existing_0", Text: "already here", Source: "x", UserID: "a", Domain: "d"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunIfEmpty(context.Background()); err != nil {
		t.Fatal(err)
	}
	n, _ := mem.Count(context.Background())
	if n != 1 {
		t.Errorf("populated store was re-seeded: count %d", n)
	}
}

func TestRunIfEmpty_MissingFolder(t *testing.T) {
	s, mem := newSeeder(t, "/does/not/exist")
	if err := s.RunIfEmpty(context.Background()); err != nil {
		t.Errorf("missing seed folder must not be an error: %v", err)
	}
	n, _ := mem.Count(context.Background())
	if n != 0 {
		t.Errorf("count: %d", n)
	}
}

func TestIngestFile_SingleSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late-arrival.txt")
	if err := os.WriteFile(path, []byte("added after boot"), 0600); err != nil {
		t.Fatal(err)
	}
	s, mem := newSeeder(t, dir)
	s.IngestFile(context.Background(), path)
	got, _ := mem.Query(context.Background(), "boot", 5, store.Filter{UserID: SeedUser})
	if len(got) != 1 || got[0].Source != "late-arrival.txt" {
		t.Errorf("fragments: %+v", got)
	}
}

func TestIngestFile_UnreadableFileTolerated(t *testing.T) {
	s, mem := newSeeder(t, t.TempDir())
	s.IngestFile(context.Background(), "/does/not/exist.txt")
	n, _ := mem.Count(context.Background())
	if n != 0 {
		t.Errorf("count: %d", n)
	}
}
