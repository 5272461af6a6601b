package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ddgRateLimit enforces a global rate limit of 1 query per second across all
// DuckDuckGo instances and goroutines.
var ddgRateLimit struct {
	mu   sync.Mutex
	last time.Time
}

// DuckDuckGo implements a searcher using DuckDuckGo's HTML lite interface.
// It needs no API key, which makes it the default backend.
type DuckDuckGo struct {
	// Endpoint overrides the default lite URL. Used in tests.
	Endpoint string
	fetcher  *Fetcher
	client   *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo searcher. A non-nil fetcher enables
// full-page content retrieval for each result.
func NewDuckDuckGo(fetcher *Fetcher) *DuckDuckGo {
	return &DuckDuckGo{
		Endpoint: "https://lite.duckduckgo.com/lite/",
		fetcher:  fetcher,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Search scrapes the DuckDuckGo lite HTML page for results.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}

	// Enforce global 1 QPS rate limit.
	ddgRateLimit.mu.Lock()
	if wait := time.Until(ddgRateLimit.last.Add(time.Second)); wait > 0 {
		ddgRateLimit.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		ddgRateLimit.mu.Lock()
	}
	ddgRateLimit.last = time.Now()
	ddgRateLimit.mu.Unlock()

	formData := url.Values{}
	formData.Set("q", query)

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(formData.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = d.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		// Back off and retry on 429, doubling the delay each time up to 30 s.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	results := parseLiteResults(string(body))
	if d.fetcher != nil {
		for i := range results {
			if text, err := d.fetcher.Fetch(ctx, results[i].URL); err == nil {
				results[i].RawContent = text
			}
		}
	}
	return results, nil
}

var (
	ddgLinkPattern    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	ddgLinkPattern2   = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	ddgSnippetPattern = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	ddgAnyLinkPattern = regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
)

// parseLiteResults extracts search results from the DuckDuckGo lite HTML.
// The lite page has a simple structure with result links and snippets.
func parseLiteResults(html string) []Result {
	var results []Result

	matches := ddgLinkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = ddgLinkPattern2.FindAllStringSubmatch(html, -1)
	}
	snippetMatches := ddgSnippetPattern.FindAllStringSubmatch(html, -1)

	for i, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(strings.TrimSpace(match[2]))

		snippet := ""
		if i < len(snippetMatches) && len(snippetMatches[i]) > 1 {
			snippet = cleanHTML(snippetMatches[i][1])
		}

		// Skip ad results or empty results
		if urlStr == "" || title == "" {
			continue
		}

		results = append(results, Result{URL: urlStr, Title: title, Content: snippet})
		if len(results) >= maxResults {
			break
		}
	}

	// If the structured markup changed, fall back to any external links.
	if len(results) == 0 {
		results = fallbackParse(html)
	}
	return results
}

// fallbackParse tries a simpler approach to extract links.
func fallbackParse(html string) []Result {
	var results []Result

	matches := ddgAnyLinkPattern.FindAllStringSubmatch(html, -1)
	seen := make(map[string]bool)
	for _, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(strings.TrimSpace(match[2]))

		// Skip DuckDuckGo internal links
		if strings.Contains(urlStr, "duckduckgo.com") ||
			strings.HasPrefix(urlStr, "/") ||
			strings.HasPrefix(urlStr, "#") ||
			strings.HasPrefix(urlStr, "javascript:") {
			continue
		}

		// Skip if title is too short or looks like navigation
		if len(title) < 5 {
			continue
		}

		if seen[urlStr] {
			continue
		}
		seen[urlStr] = true

		results = append(results, Result{URL: urlStr, Title: title})
		if len(results) >= maxResults {
			break
		}
	}
	return results
}

// cleanHTML removes HTML tags and entities.
func cleanHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(decodeEntities(s))
}
