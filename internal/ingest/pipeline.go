// Package ingest drives extraction, chunking, metadata tagging, and batched
// writes to the vector store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/synapse/internal/chunker"
	"github.com/hyperjump/synapse/internal/extract"
	"github.com/hyperjump/synapse/internal/manifest"
	"github.com/hyperjump/synapse/internal/models"
	"github.com/hyperjump/synapse/internal/store"
	"go.uber.org/zap"
)

// ErrUnsupportedType marks a file whose format has no extraction variant.
// Callers decide whether that is a skip (folder batches) or a client error
// (single-file uploads).
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrExtractionFailed marks a supported file whose content could not be read,
// such as a corrupt archive or a scan with no OCR engine available.
var ErrExtractionFailed = errors.New("extraction failed")

// Pipeline ingests text and files into the vector store.
type Pipeline struct {
	store     store.Store
	extractor *extract.Extractor
	ledger    *manifest.Manifest
	chunkSize int
	overlap   int
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithManifest enables the ingestion ledger used to purge stale fragments on
// re-ingestion. Without it, re-ingestion overwrites matching ids but never
// removes leftovers from a previous, longer chunking.
func WithManifest(m *manifest.Manifest) Option {
	return func(p *Pipeline) { p.ledger = m }
}

// WithLogger sets a logger for degradation events.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline writing to st. chunkSize and overlap are
// validated on first use by the chunker.
func NewPipeline(st store.Store, extractor *extract.Extractor, chunkSize, overlap int, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     st,
		extractor: extractor,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FragmentID derives the deterministic id for chunk index of source owned by
// userID. Re-ingesting an unchanged source with unchanged chunking parameters
// reproduces the same ids, so the store overwrites instead of duplicating.
func FragmentID(userID, source string, index int) string {
	return fmt.Sprintf("%s_%s_%d", userID, source, index)
}

// IngestText chunks text and writes the fragments in one batched store call.
// Empty or whitespace-only text ingests nothing and is not an error.
// Returns the number of fragments stored.
func (p *Pipeline) IngestText(ctx context.Context, text, source string, scope models.Scope) (int, error) {
	scope = scope.Normalize()
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	clipped, cut := chunker.Clip(text)
	if cut && p.logger != nil {
		p.logger.Warn("input text clipped before chunking",
			zap.String("source", source),
			zap.Int("max_len", chunker.MaxTextLen))
	}
	chunks, err := chunker.Chunk(clipped, p.chunkSize, p.overlap)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", source, err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	fragments := p.buildFragments(chunks, source, scope)
	if err := p.store.Add(ctx, fragments); err != nil {
		return 0, fmt.Errorf("store fragments for %s: %w", source, err)
	}
	p.reconcileLedger(ctx, source, scope, len(fragments))
	return len(fragments), nil
}

// IngestFile extracts text from data and ingests it with filename as source.
// An unsupported type returns ErrUnsupportedType; an extraction failure is an
// explicit error for this one file.
func (p *Pipeline) IngestFile(ctx context.Context, data []byte, filename, mimeHint string, scope models.Scope) (int, error) {
	res := p.extractor.ExtractBytes(ctx, data, filename, mimeHint)
	switch res.Status {
	case extract.StatusSkipped:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, res.Reason)
	case extract.StatusFailed:
		return 0, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, filename, res.Err)
	}
	return p.IngestText(ctx, res.Text, filename, scope)
}

func (p *Pipeline) buildFragments(chunks []string, source string, scope models.Scope) []models.Fragment {
	fragments := make([]models.Fragment, len(chunks))
	for i, chunk := range chunks {
		fragments[i] = models.Fragment{
			ID:     FragmentID(scope.UserID, source, i),
			Text:   chunk,
			Source: source,
			UserID: scope.UserID,
			Domain: scope.Domain,
		}
	}
	return fragments
}

// reconcileLedger purges fragments left over from a previous ingestion of the
// same source that produced more chunks (shrunk input or changed parameters),
// then records the new state. Ledger trouble degrades to overwrite-only
// behavior; it never fails the ingestion.
func (p *Pipeline) reconcileLedger(ctx context.Context, source string, scope models.Scope, count int) {
	if p.ledger == nil {
		return
	}
	prev, err := p.ledger.Lookup(ctx, scope.UserID, source)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("manifest lookup failed", zap.String("source", source), zap.Error(err))
		}
		return
	}
	if prev != nil && prev.Fragments > count {
		stale := make([]string, 0, prev.Fragments-count)
		for i := count; i < prev.Fragments; i++ {
			stale = append(stale, FragmentID(scope.UserID, source, i))
		}
		if err := p.store.Delete(ctx, stale); err != nil && p.logger != nil {
			p.logger.Warn("stale fragment purge failed", zap.String("source", source), zap.Error(err))
		}
	}
	err = p.ledger.Record(ctx, manifest.Entry{
		UserID:    scope.UserID,
		Source:    source,
		ChunkSize: p.chunkSize,
		Overlap:   p.overlap,
		Fragments: count,
	})
	if err != nil && p.logger != nil {
		p.logger.Warn("manifest record failed", zap.String("source", source), zap.Error(err))
	}
}
