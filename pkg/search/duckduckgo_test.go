package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const liteResultsPage = `<html><body><table>
<tr><td><a class='result-link' href='https://example.com/one'>First Result</a></td></tr>
<tr><td class='result-snippet'>Snippet one with <b>bold</b> text</td></tr>
<tr><td><a class='result-link' href='https://example.com/two'>Second Result</a></td></tr>
<tr><td class='result-snippet'>Snippet two &amp; more</td></tr>
</table></body></html>`

func TestParseLiteResults(t *testing.T) {
	results := parseLiteResults(liteResultsPage)
	if len(results) != 2 {
		t.Fatalf("parseLiteResults() returned %d results, want 2", len(results))
	}

	if results[0].URL != "https://example.com/one" || results[0].Title != "First Result" {
		t.Errorf("first result = %+v", results[0])
	}
	if results[0].Content != "Snippet one with bold text" {
		t.Errorf("first snippet = %q, want inline tags stripped", results[0].Content)
	}
	if results[1].Content != "Snippet two & more" {
		t.Errorf("second snippet = %q, want entities decoded", results[1].Content)
	}
}

func TestParseLiteResultsHrefBeforeClass(t *testing.T) {
	page := `<a href='https://example.com/alt' class='result-link'>Alternate Markup</a>`
	results := parseLiteResults(page)
	if len(results) != 1 || results[0].URL != "https://example.com/alt" {
		t.Fatalf("parseLiteResults() = %+v, want the alternate attribute order handled", results)
	}
}

func TestParseLiteResultsCapsAtMaxResults(t *testing.T) {
	var b strings.Builder
	for i := 0; i < maxResults+3; i++ {
		fmt.Fprintf(&b, "<a class='result-link' href='https://example.com/%d'>Result number %d</a>\n", i, i)
	}

	results := parseLiteResults(b.String())
	if len(results) != maxResults {
		t.Errorf("parseLiteResults() returned %d results, want capped at %d", len(results), maxResults)
	}
}

func TestFallbackParse(t *testing.T) {
	page := `<html><body>
<a href='https://duckduckgo.com/settings'>Settings page link</a>
<a href='/local'>Local navigation link</a>
<a href='#top'>Anchor link text</a>
<a href='javascript:void(0)'>Script link text</a>
<a href='https://example.com/real'>A real external result</a>
<a href='https://example.com/real'>A real external result</a>
<a href='https://example.com/x'>ok</a>
</body></html>`

	results := fallbackParse(page)
	if len(results) != 1 {
		t.Fatalf("fallbackParse() returned %d results, want 1:\n%+v", len(results), results)
	}
	if results[0].URL != "https://example.com/real" {
		t.Errorf("fallbackParse() URL = %q", results[0].URL)
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "hello", "hello"},
		{"Tags removed", "a <b>bold</b> word", "a bold word"},
		{"Entities decoded", "fish &amp; chips &#39;hot&#39;", "fish & chips 'hot'"},
		{"Trimmed", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanHTML(tt.input); got != tt.expected {
				t.Errorf("cleanHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		gotQuery = r.FormValue("q")
		fmt.Fprint(w, liteResultsPage)
	}))
	defer srv.Close()

	d := NewDuckDuckGo(nil)
	d.Endpoint = srv.URL

	results, err := d.Search(context.Background(), "test query")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "test query" {
		t.Errorf("posted query = %q, want test query", gotQuery)
	}
	if len(results) != 2 {
		t.Errorf("Search() returned %d results, want 2", len(results))
	}
}

func TestDuckDuckGoSearchRejectsEmptyQuery(t *testing.T) {
	d := NewDuckDuckGo(nil)
	if _, err := d.Search(context.Background(), "   "); err == nil {
		t.Error("Search() with blank query returned nil error")
	}
}
