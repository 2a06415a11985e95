package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hyperjump/synapse/internal/models"
)

const defaultTimeout = 15 * time.Second

// Chroma is a REST client for a Chroma-compatible vector store server.
// The collection is resolved (created if missing) at construction; the server
// computes embeddings for added documents and query texts.
type Chroma struct {
	baseURL      string
	collectionID string
	client       *http.Client
}

// ChromaConfig holds connection settings for the vector store.
type ChromaConfig struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

// NewChroma connects to the store and resolves the collection id, creating
// the collection when it does not exist yet.
func NewChroma(ctx context.Context, cfg ChromaConfig) (*Chroma, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	c := &Chroma{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: timeout},
	}
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]any{"name": cfg.Collection, "get_or_create": true}
	if err := c.postJSON(ctx, c.baseURL+"/api/v1/collections", body, &resp); err != nil {
		return nil, fmt.Errorf("resolve collection %q: %w", cfg.Collection, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("resolve collection %q: empty id in response", cfg.Collection)
	}
	c.collectionID = resp.ID
	return c, nil
}

// Add implements Store. Blank fragments are dropped before the call; ids are
// upserted so re-ingesting an unchanged source overwrites in place.
func (c *Chroma) Add(ctx context.Context, fragments []models.Fragment) error {
	fragments = Sanitize(fragments)
	if len(fragments) == 0 {
		return nil
	}
	ids := make([]string, len(fragments))
	documents := make([]string, len(fragments))
	metadatas := make([]map[string]string, len(fragments))
	for i, f := range fragments {
		ids[i] = f.ID
		documents[i] = f.Text
		metadatas[i] = map[string]string{
			"source":  f.Source,
			"user_id": f.UserID,
			"domain":  f.Domain,
		}
	}
	body := map[string]any{"ids": ids, "documents": documents, "metadatas": metadatas}
	return c.postJSON(ctx, c.collectionURL("upsert"), body, nil)
}

// Query implements Store.
func (c *Chroma) Query(ctx context.Context, text string, topK int, filter Filter) ([]models.Fragment, error) {
	if topK <= 0 {
		topK = models.DefaultTopK
	}
	body := map[string]any{
		"query_texts": []string{text},
		"n_results":   topK,
		"include":     []string{"documents", "metadatas"},
	}
	if where := whereClause(filter); where != nil {
		body["where"] = where
	}
	var resp struct {
		IDs       [][]string            `json:"ids"`
		Documents [][]string            `json:"documents"`
		Metadatas [][]map[string]string `json:"metadatas"`
	}
	if err := c.postJSON(ctx, c.collectionURL("query"), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	fragments := make([]models.Fragment, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		f := models.Fragment{ID: id}
		if i < len(resp.Documents[0]) {
			f.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta := resp.Metadatas[0][i]
			f.Source = meta["source"]
			f.UserID = meta["user_id"]
			f.Domain = meta["domain"]
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

// Delete implements Store.
func (c *Chroma) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.postJSON(ctx, c.collectionURL("delete"), map[string]any{"ids": ids}, nil)
}

// Count implements Store.
func (c *Chroma) Count(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.collectionURL("count"), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("store count: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("store count: %s", resp.Status)
	}
	var n int
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		return 0, fmt.Errorf("store count: decode: %w", err)
	}
	return n, nil
}

// Close implements Store. The underlying HTTP client has no resources to release.
func (c *Chroma) Close() error { return nil }

func (c *Chroma) collectionURL(op string) string {
	return fmt.Sprintf("%s/api/v1/collections/%s/%s", c.baseURL, c.collectionID, op)
}

// whereClause builds a Chroma metadata filter; nil means match everything.
func whereClause(f Filter) map[string]any {
	var clauses []map[string]any
	if f.UserID != "" {
		clauses = append(clauses, map[string]any{"user_id": map[string]any{"$eq": f.UserID}})
	}
	if f.Domain != "" {
		clauses = append(clauses, map[string]any{"domain": map[string]any{"$eq": f.Domain}})
	}
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return map[string]any{"$and": clauses}
	}
}

func (c *Chroma) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("store POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("store POST %s: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
