// Package websearch provides the live web-search fallback used when local
// retrieval coverage is weak.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/synapse/internal/models"
)

// DefaultEndpoint is the Serper search API.
const DefaultEndpoint = "https://google.serper.dev/search"

// requestTimeout bounds one web-search call so a slow provider cannot stall a
// request indefinitely.
const requestTimeout = 15 * time.Second

// Searcher answers a query with ranked web documents converted to fragments.
type Searcher interface {
	// Enabled reports whether the provider is configured. A missing API key
	// is a configuration state, not a failure.
	Enabled() bool
	Search(ctx context.Context, query string, limit int) ([]models.Fragment, error)
}

// Client talks to a Serper-compatible search API.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient creates a web-search client. endpoint may be empty to use the
// default provider; an empty apiKey yields a disabled client.
func NewClient(apiKey, endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// Enabled implements Searcher.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Search implements Searcher. Results are tagged with the web sentinel scope:
// web content never belongs to the requesting user's private scope.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Fragment, error) {
	if !c.Enabled() {
		return nil, nil
	}
	payload, err := json.Marshal(map[string]any{"q": query, "num": limit})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("web search: %s", resp.Status)
	}

	var parsed struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("web search: decode: %w", err)
	}

	fragments := make([]models.Fragment, 0, len(parsed.Organic))
	for _, hit := range parsed.Organic {
		if len(fragments) >= limit && limit > 0 {
			break
		}
		text := strings.TrimSpace(strings.TrimSpace(hit.Title) + "\n" + strings.TrimSpace(hit.Snippet))
		if text == "" {
			continue
		}
		fragments = append(fragments, models.Fragment{
			ID:     "web_" + uuid.New().String()[:8],
			Text:   text,
			Source: models.WebSourcePrefix + hit.Link,
			UserID: models.WebUser,
			Domain: models.GeneralDomain,
		})
	}
	return fragments, nil
}
