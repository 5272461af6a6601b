package search

import (
	"fmt"

	"github.com/mikeboe/deep-researcher/pkg/config"
)

// New builds the search provider selected by SEARCH_API. The rest of the
// system only ever sees the Provider interface.
func New(cfg *config.Config) (Provider, error) {
	var fetcher *Fetcher
	if cfg.FetchFullPage {
		fetcher = NewFetcher()
	}

	switch cfg.SearchAPI {
	case "tavily":
		return NewTavily(cfg.TavilyAPIKey, cfg.FetchFullPage), nil
	case "perplexity":
		return NewPerplexity(cfg.PerplexityAPIKey), nil
	case "searxng":
		return NewSearXNG(cfg.SearXNGURL, fetcher), nil
	case "duckduckgo":
		return NewDuckDuckGo(fetcher), nil
	default:
		return nil, fmt.Errorf("unknown search API: %s", cfg.SearchAPI)
	}
}
