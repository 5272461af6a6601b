package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikeboe/deep-researcher/pkg/config"
)

func TestPerplexitySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer pplx-test" {
			t.Errorf("Authorization = %q", got)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "sonar-pro" {
			t.Errorf("model = %q, want sonar-pro", body.Model)
		}
		if len(body.Messages) != 2 || body.Messages[1].Content != "fusion energy breakthroughs" {
			t.Errorf("messages = %+v", body.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "The answer text."}},
			},
			"citations": []string{"https://example.com/a", "https://example.com/b"},
		})
	}))
	defer srv.Close()

	p := NewPerplexity("pplx-test")
	p.Endpoint = srv.URL

	results, err := p.Search(context.Background(), "fusion energy breakthroughs")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want one per citation", len(results))
	}
	if results[0].URL != "https://example.com/a" || results[0].Content != "The answer text." {
		t.Errorf("first result = %+v, want the answer attributed to the first citation", results[0])
	}
	if results[1].URL != "https://example.com/b" || !strings.Contains(results[1].Content, "See above") {
		t.Errorf("second result = %+v", results[1])
	}
}

func TestPerplexitySearchWithoutCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Uncited answer."}},
			},
		})
	}))
	defer srv.Close()

	p := NewPerplexity("pplx-test")
	p.Endpoint = srv.URL

	results, err := p.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Content != "Uncited answer." {
		t.Errorf("results = %+v, want a single placeholder-cited result", results)
	}
}

func TestPerplexitySearchRequiresAPIKey(t *testing.T) {
	p := NewPerplexity("")
	if _, err := p.Search(context.Background(), "anything"); err == nil {
		t.Error("Search() without API key returned nil error")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		name      string
		searchAPI string
		wantErr   bool
	}{
		{"Tavily", "tavily", false},
		{"Perplexity", "perplexity", false},
		{"SearXNG", "searxng", false},
		{"DuckDuckGo", "duckduckgo", false},
		{"Unknown", "bing", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{SearchAPI: tt.searchAPI}
			provider, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && provider == nil {
				t.Error("New() returned a nil provider")
			}
		})
	}
}
