package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearXNGSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "open source llms" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": "https://example.com/1", "title": "One", "content": "first"},
				{"url": "https://example.com/2", "title": "Two", "content": "second"},
			},
		})
	}))
	defer srv.Close()

	s := NewSearXNG(srv.URL, nil)
	results, err := s.Search(context.Background(), "open source llms")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].URL != "https://example.com/1" || results[0].Content != "first" {
		t.Errorf("first result = %+v", results[0])
	}
}

func TestSearXNGSearchCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []map[string]any
		for i := 0; i < maxResults+4; i++ {
			items = append(items, map[string]any{
				"url":   fmt.Sprintf("https://example.com/%d", i),
				"title": fmt.Sprintf("Result %d", i),
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"results": items})
	}))
	defer srv.Close()

	s := NewSearXNG(srv.URL, nil)
	results, err := s.Search(context.Background(), "many")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != maxResults {
		t.Errorf("Search() returned %d results, want capped at %d", len(results), maxResults)
	}
}

func TestSearXNGSearchPopulatesRawContentViaFetcher(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>full page body</p></body></html>")
	}))
	defer page.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": page.URL, "title": "Fetched", "content": "snippet"},
			},
		})
	}))
	defer srv.Close()

	s := NewSearXNG(srv.URL, NewFetcher())
	results, err := s.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].RawContent != "full page body" {
		t.Errorf("results = %+v, want RawContent populated from the page", results)
	}
}

func TestSearXNGSearchRequiresBaseURL(t *testing.T) {
	s := NewSearXNG("", nil)
	if _, err := s.Search(context.Background(), "anything"); err == nil {
		t.Error("Search() without base URL returned nil error")
	}
}
