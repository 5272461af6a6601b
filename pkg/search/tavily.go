package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey string
	// IncludeRawContent asks Tavily to return the full page text alongside
	// each snippet.
	IncludeRawContent bool
	// Endpoint overrides the default API URL. Used in tests.
	Endpoint string
	client   *http.Client
}

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string, includeRawContent bool) *Tavily {
	return &Tavily{
		APIKey:            apiKey,
		IncludeRawContent: includeRawContent,
		Endpoint:          tavilyEndpoint,
		client:            &http.Client{Timeout: 30 * time.Second},
	}
}

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	body := map[string]any{
		"query":               query,
		"api_key":             t.APIKey,
		"max_results":         maxResults,
		"include_raw_content": t.IncludeRawContent,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = t.client.Do(req)
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
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title      string `json:"title"`
			URL        string `json:"url"`
			Content    string `json:"content"`
			RawContent string `json:"raw_content"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, Result{
			Title:      r.Title,
			URL:        r.URL,
			Content:    r.Content,
			RawContent: r.RawContent,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
