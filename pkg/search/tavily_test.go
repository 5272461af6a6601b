package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestTavilySearch(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "T1", "url": "https://example.com/1", "content": "snippet 1", "raw_content": "full 1"},
				{"title": "T2", "url": "https://example.com/2", "content": "snippet 2"},
			},
		})
	}))
	defer srv.Close()

	tv := NewTavily("tvly-test-key", true)
	tv.Endpoint = srv.URL

	results, err := tv.Search(context.Background(), "quantum computing")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotBody["query"] != "quantum computing" {
		t.Errorf("request query = %v", gotBody["query"])
	}
	if gotBody["api_key"] != "tvly-test-key" {
		t.Errorf("request api_key = %v", gotBody["api_key"])
	}
	if gotBody["include_raw_content"] != true {
		t.Errorf("request include_raw_content = %v, want true", gotBody["include_raw_content"])
	}

	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].RawContent != "full 1" {
		t.Errorf("first result RawContent = %q", results[0].RawContent)
	}
	if results[1].RawContent != "" {
		t.Errorf("second result RawContent = %q, want empty", results[1].RawContent)
	}
}

func TestTavilySearchRequiresAPIKey(t *testing.T) {
	tv := NewTavily("", false)
	if _, err := tv.Search(context.Background(), "anything"); err == nil {
		t.Error("Search() without API key returned nil error")
	}
}

func TestTavilySearchRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "T", "url": "https://example.com/1", "content": "c"},
			},
		})
	}))
	defer srv.Close()

	tv := NewTavily("tvly-test-key", false)
	tv.Endpoint = srv.URL

	results, err := tv.Search(context.Background(), "rate limited")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2 (one 429, one retry)", calls.Load())
	}
	if len(results) != 1 {
		t.Errorf("Search() returned %d results, want 1", len(results))
	}
}

func TestTavilySearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tv := NewTavily("tvly-test-key", false)
	tv.Endpoint = srv.URL
	if _, err := tv.Search(context.Background(), "boom"); err == nil {
		t.Error("Search() on 500 returned nil error")
	}
}
