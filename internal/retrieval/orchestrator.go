// Package retrieval orchestrates local vector search and the web-search
// fallback into a single ranked result list.
package retrieval

import (
	"context"

	"github.com/hyperjump/synapse/internal/models"
	"github.com/hyperjump/synapse/internal/store"
	"github.com/hyperjump/synapse/internal/websearch"
	"go.uber.org/zap"
)

// Orchestrator serves search requests. It holds no per-request state and
// treats the store as a shared, externally synchronized resource.
type Orchestrator struct {
	store  store.Store
	web    websearch.Searcher
	logger *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a logger for degradation events.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator. web may be nil when no provider is
// configured; the fallback is then silently skipped.
func NewOrchestrator(st store.Store, web websearch.Searcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: st, web: web}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CoverageThreshold is the minimum number of local results considered
// sufficient for topK; below it the web fallback supplements them.
func CoverageThreshold(topK int) int {
	threshold := topK / 2
	if threshold < 2 {
		threshold = 2
	}
	return threshold
}

// Search answers query. Local results always precede web results and no
// re-ranking happens across the two sources. A store failure degrades to zero
// local results; a web failure degrades to local results only. The returned
// chunk list is never nil.
func (o *Orchestrator) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	// Absent scope fields mean "match any"; sentinels are not forced into the
	// filter so global content stays reachable from unscoped requests.
	filter := store.Filter{UserID: query.UserID, Domain: query.Domain}
	local, err := o.store.Query(ctx, query.Query, query.TopK, filter)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("vector store query failed", zap.Error(err))
		}
		local = nil
	}

	chunks := make([]models.Fragment, 0, len(local))
	chunks = append(chunks, local...)

	if query.WebEnabled() && o.web != nil && o.web.Enabled() && len(local) < CoverageThreshold(query.TopK) {
		webResults, err := o.web.Search(ctx, query.Query, query.TopK)
		if err != nil {
			if o.logger != nil {
				o.logger.Warn("web search fallback failed", zap.Error(err))
			}
		} else {
			chunks = append(chunks, webResults...)
		}
	}

	scope := query.Scope()
	return &models.SearchResponse{
		Query:   query.Query,
		Subject: query.Subject,
		UserID:  scope.UserID,
		Domain:  scope.Domain,
		Chunks:  chunks,
	}, nil
}
