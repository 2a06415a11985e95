// Package seed loads bundled reference documents into an empty vector store at
// boot and keeps them current when the seed folder changes.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/synapse/internal/ingest"
	"github.com/hyperjump/synapse/internal/models"
	"github.com/hyperjump/synapse/internal/store"
	"go.uber.org/zap"
)

// SeedUser is the owner recorded on fragments ingested from the seed folder.
// Seed content is shared reference material, not user data.
const SeedUser = "seed_docs"

// Seeder ingests the seed folder into the store.
type Seeder struct {
	store    store.Store
	pipeline *ingest.Pipeline
	dir      string
	logger   *zap.Logger
}

// New creates a seeder for dir.
func New(st store.Store, pipeline *ingest.Pipeline, dir string, logger *zap.Logger) *Seeder {
	return &Seeder{store: st, pipeline: pipeline, dir: dir, logger: logger}
}

// Scope returns the metadata scope applied to seed fragments.
func Scope() models.Scope {
	return models.Scope{UserID: SeedUser, Domain: models.GeneralDomain}
}

// RunIfEmpty ingests the seed folder when the store holds no fragments.
// A populated store means a previous boot already seeded it; re-seeding on
// every start would make boot time scale with the seed corpus. A missing seed
// folder is not an error.
func (s *Seeder) RunIfEmpty(ctx context.Context) error {
	count, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count fragments: %w", err)
	}
	if count > 0 {
		s.logger.Debug("store already populated, skipping seed", zap.Int("fragments", count))
		return nil
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Info("seed folder missing, nothing to seed", zap.String("dir", s.dir))
		return nil
	}

	report, err := s.pipeline.IngestFolder(ctx, s.dir, Scope())
	if err != nil {
		return fmt.Errorf("seed folder %s: %w", s.dir, err)
	}
	for _, f := range report.Files {
		if f.Status != "extracted" {
			s.logger.Warn("seed file not ingested",
				zap.String("file", f.Name),
				zap.String("status", f.Status),
				zap.String("detail", f.Detail))
		}
	}
	s.logger.Info("seed ingestion complete",
		zap.Int("files", len(report.Files)),
		zap.Int("fragments", report.Fragments))
	return nil
}

// IngestFile ingests a single seed file, used by the folder watcher when a
// file appears or changes after boot.
func (s *Seeder) IngestFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("seed file read failed", zap.String("path", path), zap.Error(err))
		return
	}
	name := filepath.Base(path)
	count, err := s.pipeline.IngestFile(ctx, data, name, "", Scope())
	if err != nil {
		s.logger.Warn("seed file ingestion failed", zap.String("file", name), zap.Error(err))
		return
	}
	s.logger.Info("seed file ingested", zap.String("file", name), zap.Int("fragments", count))
}
