// Package store provides clients for the external vector store that persists
// fragments, computes embeddings server-side, and answers nearest-neighbor
// queries filtered by metadata equality.
package store

import (
	"context"
	"strings"

	"github.com/hyperjump/synapse/internal/models"
)

// Filter restricts a query by metadata equality. Empty fields match any value.
type Filter struct {
	UserID string
	Domain string
}

// Store is the vector store collaborator. Implementations own persistence and
// embedding; callers never cache store state across requests.
type Store interface {
	// Add upserts fragments in one batched call. Fragments with an existing
	// id are overwritten, which makes re-ingestion idempotent.
	Add(ctx context.Context, fragments []models.Fragment) error
	// Query returns up to topK fragments nearest to text under filter,
	// ordered by relevance.
	Query(ctx context.Context, text string, topK int, filter Filter) ([]models.Fragment, error)
	// Delete removes fragments by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error
	// Count returns the number of stored fragments.
	Count(ctx context.Context) (int, error)
	Close() error
}

// Sanitize drops fragments whose text is empty or whitespace-only. Stored
// fragment text is never blank.
func Sanitize(fragments []models.Fragment) []models.Fragment {
	kept := fragments[:0]
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			kept = append(kept, f)
		}
	}
	return kept
}
