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

const perplexityEndpoint = "https://api.perplexity.ai/chat/completions"

// Perplexity runs a query through the Perplexity Sonar API. The answer text
// is attributed to the first citation; remaining citations become secondary
// results so every cited URL ends up in the registry.
type Perplexity struct {
	APIKey string
	Model  string
	// Endpoint overrides the default API URL. Used in tests.
	Endpoint string
	client   *http.Client
}

// NewPerplexity constructs a Perplexity search provider.
func NewPerplexity(apiKey string) *Perplexity {
	return &Perplexity{
		APIKey:   apiKey,
		Model:    "sonar-pro",
		Endpoint: perplexityEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *Perplexity) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, errors.New("perplexity: API key is missing")
	}

	body := map[string]any{
		"model": p.Model,
		"messages": []map[string]string{
			{"role": "system", "content": "Search the web and provide factual information with sources."},
			{"role": "user", "content": query},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("perplexity http %d", resp.StatusCode)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Citations []string `json:"citations"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("perplexity: response contains no choices")
	}

	content := response.Choices[0].Message.Content
	citations := response.Citations
	if len(citations) == 0 {
		citations = []string{"https://perplexity.ai"}
	}

	results := make([]Result, 0, len(citations))
	for i, url := range citations {
		r := Result{
			URL:   url,
			Title: fmt.Sprintf("Perplexity Search, Source %d", i+1),
		}
		if i == 0 {
			r.Content = content
		} else {
			r.Content = "See above. The full answer is attributed to the first citation."
		}
		results = append(results, r)
	}
	return results, nil
}
