package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/synapse/internal/chunker"
	"github.com/hyperjump/synapse/internal/extract"
	"github.com/hyperjump/synapse/internal/models"
	"go.uber.org/zap"
)

// FileResult is the per-file outcome of a folder ingestion.
type FileResult struct {
	Name      string `json:"name"`
	Status    string `json:"status"` // extracted, skipped, or failed
	Fragments int    `json:"fragments"`
	Detail    string `json:"detail,omitempty"`
}

// FolderReport aggregates the outcome of one folder ingestion. A skipped or
// failed file never fails the batch; the policy is visible in the per-file
// results rather than hidden in a catch-all.
type FolderReport struct {
	Files     []FileResult `json:"files"`
	Fragments int          `json:"fragments"`
}

// IngestFolder enumerates the regular files directly under dir, extracts and
// chunks each independently, and writes all resulting fragments to the store
// in a single batched call. Files that are unsupported, fail extraction, or
// yield no usable text are recorded in the report and skipped.
func (p *Pipeline) IngestFolder(ctx context.Context, dir string, scope models.Scope) (FolderReport, error) {
	scope = scope.Normalize()
	var report FolderReport

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("read folder %s: %w", dir, err)
	}

	var batch []models.Fragment
	counts := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			report.Files = append(report.Files, FileResult{Name: name, Status: "failed", Detail: err.Error()})
			continue
		}
		res := p.extractor.ExtractBytes(ctx, data, name, "")
		switch res.Status {
		case extract.StatusSkipped:
			report.Files = append(report.Files, FileResult{Name: name, Status: "skipped", Detail: res.Reason})
			continue
		case extract.StatusFailed:
			if p.logger != nil {
				p.logger.Warn("folder file extraction failed", zap.String("file", name), zap.Error(res.Err))
			}
			report.Files = append(report.Files, FileResult{Name: name, Status: "failed", Detail: res.Err.Error()})
			continue
		}
		fragments, err := p.chunkSource(res.Text, name, scope)
		if err != nil {
			return report, err
		}
		if len(fragments) == 0 {
			report.Files = append(report.Files, FileResult{Name: name, Status: "skipped", Detail: "no usable text"})
			continue
		}
		batch = append(batch, fragments...)
		counts[name] = len(fragments)
		report.Files = append(report.Files, FileResult{Name: name, Status: "extracted", Fragments: len(fragments)})
	}

	if len(batch) == 0 {
		return report, nil
	}
	if err := p.store.Add(ctx, batch); err != nil {
		return report, fmt.Errorf("store folder batch: %w", err)
	}
	for name, count := range counts {
		p.reconcileLedger(ctx, name, scope, count)
	}
	report.Fragments = len(batch)
	return report, nil
}

// chunkSource chunks one extracted text into tagged fragments without writing
// them, so folder ingestion can batch the store write across files.
func (p *Pipeline) chunkSource(text, source string, scope models.Scope) ([]models.Fragment, error) {
	clipped, cut := chunker.Clip(text)
	if cut && p.logger != nil {
		p.logger.Warn("input text clipped before chunking",
			zap.String("source", source),
			zap.Int("max_len", chunker.MaxTextLen))
	}
	chunks, err := chunker.Chunk(clipped, p.chunkSize, p.overlap)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", source, err)
	}
	return p.buildFragments(chunks, source, scope), nil
}
