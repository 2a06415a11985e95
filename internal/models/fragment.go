// Package models defines core data structures for fragments, scopes, and search requests.
package models

// Sentinel scope values. Fragments ingested without an explicit owner or domain
// are stored under these so metadata fields are never empty.
const (
	GlobalUser    = "global"
	GeneralDomain = "general"

	// WebUser and WebSourcePrefix mark fragments produced by the web-search
	// fallback. Web content never belongs to a requesting user's private scope.
	WebUser         = "web"
	WebSourcePrefix = "web:"
)

// Fragment is a stored, retrievable unit of chunked text with ownership metadata.
type Fragment struct {
	ID     string `json:"id,omitempty"`
	Text   string `json:"text"`
	Source string `json:"source"`
	UserID string `json:"user_id"`
	Domain string `json:"domain"`
}

// Scope is the (user_id, domain) pair used to partition both ingestion and retrieval.
type Scope struct {
	UserID string
	Domain string
}

// Normalize returns the scope with sentinel defaults applied to empty fields.
func (s Scope) Normalize() Scope {
	if s.UserID == "" {
		s.UserID = GlobalUser
	}
	if s.Domain == "" {
		s.Domain = GeneralDomain
	}
	return s
}
