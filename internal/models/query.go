package models

import (
	"errors"
	"strings"
)

// ErrEmptyQuery is returned when a search request carries no query text.
// An empty query is a client error, not a silent empty result.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Default and maximum result counts for a search request.
const (
	DefaultTopK = 5
	MaxTopK     = 50
)

// SearchQuery represents a search request with optional scoping filters.
type SearchQuery struct {
	Query   string `json:"query"`
	Subject string `json:"subject,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Domain  string `json:"domain,omitempty"`
	TopK    int    `json:"top_k,omitempty"`
	UseWeb  *bool  `json:"use_web,omitempty"`
}

// Validate checks the query and normalizes TopK.
// Returns ErrEmptyQuery when the query is empty or whitespace-only.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return ErrEmptyQuery
	}
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	if q.TopK > MaxTopK {
		q.TopK = MaxTopK
	}
	return nil
}

// WebEnabled reports whether the web fallback is requested; defaults to true when unset.
func (q *SearchQuery) WebEnabled() bool {
	if q.UseWeb != nil {
		return *q.UseWeb
	}
	return true
}

// Scope returns the normalized (user_id, domain) scope of the request.
func (q *SearchQuery) Scope() Scope {
	return Scope{UserID: q.UserID, Domain: q.Domain}.Normalize()
}

// SearchResponse is the response for a search request. Chunks is never nil.
type SearchResponse struct {
	Query   string     `json:"query"`
	Subject string     `json:"subject"`
	UserID  string     `json:"user_id"`
	Domain  string     `json:"domain"`
	Chunks  []Fragment `json:"chunks"`
}

// IngestTextInput is the body of an ingest-text request.
type IngestTextInput struct {
	Text       string `json:"text"`
	SourceName string `json:"source_name,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

// IngestFileInput is the body of an ingest-file request. Data is base64-encoded.
type IngestFileInput struct {
	Base64Data string `json:"base64_data"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Domain     string `json:"domain,omitempty"`
}
