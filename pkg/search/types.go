package search

import "context"

// Result is a single item returned by a Provider.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// RawContent holds the full page text. It is populated only when
	// full-page fetching is enabled and the backend supports it.
	RawContent string `json:"raw_content,omitempty"`
}

// Provider executes a web search query and returns an ordered result list.
// Implementations are stateless per call and safe for concurrent use.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// maxResults caps how many results a backend returns per query.
const maxResults = 5
