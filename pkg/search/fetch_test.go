package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"Scripts and styles removed",
			"<script>var x = 1;</script><style>body { color: red }</style><p>Visible text</p>",
			"Visible text",
		},
		{
			"Chrome removed",
			"<nav>Menu</nav><header>Banner</header><p>Article body</p><footer>Legal</footer>",
			"Article body",
		},
		{
			"Entities decoded",
			"<p>fish &amp; chips &lt;fresh&gt;</p>",
			"fish & chips <fresh>",
		},
		{
			"Whitespace collapsed",
			"<p>a    lot\t\tof     space</p>",
			"a lot of space",
		},
		{
			"Blank lines dropped",
			"line one\n\n\n\n\nline two",
			"line one\nline two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.input); got != tt.expected {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><script>tracking();</script></head><body><h1>Page Title</h1><p>Body text here</p></body></html>")
	}))
	defer srv.Close()

	f := NewFetcher()
	text, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(text, "Page Title") || !strings.Contains(text, "Body text here") {
		t.Errorf("Fetch() = %q, want page text preserved", text)
	}
	if strings.Contains(text, "tracking") {
		t.Errorf("Fetch() = %q, want script content removed", text)
	}
}

func TestFetcherTruncatesLargePages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("a", maxFetchBytes+8192))
	}))
	defer srv.Close()

	f := NewFetcher()
	text, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.HasSuffix(text, "[TRUNCATED]") {
		t.Error("Fetch() large page missing truncation marker")
	}
	if len(text) > maxFetchBytes+len("\n[TRUNCATED]") {
		t.Errorf("Fetch() returned %d bytes, want at most %d", len(text), maxFetchBytes+len("\n[TRUNCATED]"))
	}
}

func TestFetcherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("Fetch() on 404 returned nil error")
	}
	if _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Error("Fetch() with empty URL returned nil error")
	}
}
