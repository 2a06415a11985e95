package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hyperjump/synapse/internal/models"
)

// Memory is an in-process Store for tests and local development. Relevance is
// approximated by query-token overlap; it has none of the semantics of a real
// embedding index beyond ordering.
type Memory struct {
	mu        sync.RWMutex
	fragments map[string]models.Fragment
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{fragments: make(map[string]models.Fragment)}
}

// Add implements Store. Existing ids are overwritten.
func (m *Memory) Add(_ context.Context, fragments []models.Fragment) error {
	fragments = Sanitize(fragments)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range fragments {
		m.fragments[f.ID] = f
	}
	return nil
}

// Query implements Store.
func (m *Memory) Query(_ context.Context, text string, topK int, filter Filter) ([]models.Fragment, error) {
	if topK <= 0 {
		topK = models.DefaultTopK
	}
	terms := strings.Fields(strings.ToLower(text))

	type scored struct {
		frag  models.Fragment
		score int
	}
	m.mu.RLock()
	var hits []scored
	for _, f := range m.fragments {
		if filter.UserID != "" && f.UserID != filter.UserID {
			continue
		}
		if filter.Domain != "" && f.Domain != filter.Domain {
			continue
		}
		lower := strings.ToLower(f.Text)
		score := 0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{frag: f, score: score})
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].frag.ID < hits[j].frag.ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	results := make([]models.Fragment, len(hits))
	for i, h := range hits {
		results[i] = h.frag
	}
	return results, nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.fragments, id)
	}
	return nil
}

// Count implements Store.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.fragments), nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
