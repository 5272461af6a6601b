package research

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mikeboe/deep-researcher/pkg/search"
)

// SourceRegistry holds the deduplicated sources of one session in
// insertion order. Dedup key is the normalized URL; the first retrieval of
// a URL wins and later hits are discarded entirely, so a source never
// changes once ingested.
type SourceRegistry struct {
	fetchFullPage bool
	sources       []Source
	seen          map[string]bool
}

// NewSourceRegistry creates an empty registry. fetchFullPage selects the
// full page text over the snippet when a result carries both.
func NewSourceRegistry(fetchFullPage bool) *SourceRegistry {
	return &SourceRegistry{
		fetchFullPage: fetchFullPage,
		seen:          make(map[string]bool),
	}
}

// Ingest folds raw search results into the registry and returns how many
// were newly added. Results whose normalized URL is already present are
// dropped without merging.
func (r *SourceRegistry) Ingest(results []search.Result) int {
	added := 0
	for _, res := range results {
		key := normalizeURL(res.URL)
		if key == "" || r.seen[key] {
			continue
		}
		r.seen[key] = true

		src := Source{
			URL:          res.URL,
			Title:        res.Title,
			ShortContent: res.Content,
		}
		if r.fetchFullPage {
			src.FullContent = res.RawContent
		}
		r.sources = append(r.sources, src)
		added++
	}
	return added
}

// AllSources returns the registry content in insertion order. The returned
// slice is a copy; callers cannot mutate registry state through it.
func (r *SourceRegistry) AllSources() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len reports how many unique sources the registry holds.
func (r *SourceRegistry) Len() int {
	return len(r.sources)
}

// RenderCitations formats the source list for the final report, one bullet
// per unique URL in insertion order.
func (r *SourceRegistry) RenderCitations() string {
	var b strings.Builder
	for _, s := range r.sources {
		fmt.Fprintf(&b, "* %s : %s\n", s.Title, s.URL)
	}
	return strings.TrimSpace(b.String())
}

// normalizeURL produces the dedup key for a raw URL: lowercased scheme and
// host, no fragment, no trailing slash. Unparseable URLs fall back to the
// trimmed raw string so they still dedupe exactly.
func normalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.TrimRight(trimmed, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}
