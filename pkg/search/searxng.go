package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SearXNG queries a self-hosted SearXNG instance using its JSON API.
type SearXNG struct {
	BaseURL string
	// fetcher retrieves full page text when full-page fetching is enabled.
	// Nil disables fetching.
	fetcher *Fetcher
	client  *http.Client
}

// NewSearXNG constructs a SearXNG provider. A non-nil fetcher enables
// full-page content retrieval for each result.
func NewSearXNG(baseURL string, fetcher *Fetcher) *SearXNG {
	return &SearXNG{
		BaseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SearXNG) Search(ctx context.Context, query string) ([]Result, error) {
	if s.BaseURL == "" {
		return nil, errors.New("searxng: base URL is missing")
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", s.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng http %d", resp.StatusCode)
	}

	var response struct {
		Results []struct {
			URL     string `json:"url"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	results := make([]Result, 0, maxResults)
	for _, r := range response.Results {
		item := Result{URL: r.URL, Title: r.Title, Content: r.Content}
		if s.fetcher != nil {
			if text, err := s.fetcher.Fetch(ctx, r.URL); err == nil {
				item.RawContent = text
			}
		}
		results = append(results, item)
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
