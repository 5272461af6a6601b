package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"LLM_PROVIDER", "LOCAL_LLM", "SEARCH_API",
		"MAX_WEB_RESEARCH_LOOPS", "FETCH_FULL_PAGE", "STRIP_THINKING_TOKENS", "PORT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.LLMProvider != "ollama" {
		t.Errorf("LLMProvider = %q, want ollama", cfg.LLMProvider)
	}
	if cfg.LocalLLM != "llama3.2" {
		t.Errorf("LocalLLM = %q, want llama3.2", cfg.LocalLLM)
	}
	if cfg.SearchAPI != "duckduckgo" {
		t.Errorf("SearchAPI = %q, want duckduckgo", cfg.SearchAPI)
	}
	if cfg.MaxLoops != 3 {
		t.Errorf("MaxLoops = %d, want 3", cfg.MaxLoops)
	}
	if !cfg.FetchFullPage {
		t.Error("FetchFullPage = false, want true by default")
	}
	if !cfg.StripThinkingTokens {
		t.Error("StripThinkingTokens = false, want true by default")
	}
	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("SEARCH_API", "tavily")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("MAX_WEB_RESEARCH_LOOPS", "7")
	t.Setenv("FETCH_FULL_PAGE", "false")

	cfg := Load()

	if cfg.LLMProvider != "openrouter" {
		t.Errorf("LLMProvider = %q, want openrouter", cfg.LLMProvider)
	}
	if cfg.OpenRouterAPIKey != "sk-or-test" {
		t.Errorf("OpenRouterAPIKey = %q", cfg.OpenRouterAPIKey)
	}
	if cfg.SearchAPI != "tavily" || cfg.TavilyAPIKey != "tvly-test" {
		t.Errorf("search config = %q / %q", cfg.SearchAPI, cfg.TavilyAPIKey)
	}
	if cfg.MaxLoops != 7 {
		t.Errorf("MaxLoops = %d, want 7", cfg.MaxLoops)
	}
	if cfg.FetchFullPage {
		t.Error("FetchFullPage = true, want false")
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("MAX_WEB_RESEARCH_LOOPS", "lots")
	t.Setenv("STRIP_THINKING_TOKENS", "maybe")

	cfg := Load()

	if cfg.MaxLoops != 3 {
		t.Errorf("MaxLoops = %d, want default 3 on malformed value", cfg.MaxLoops)
	}
	if !cfg.StripThinkingTokens {
		t.Error("StripThinkingTokens = false, want default true on malformed value")
	}
}
