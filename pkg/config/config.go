package config

import (
	"os"
	"strconv"
)

// Config holds all runtime settings for a research session. It is read once
// at startup; concurrent sessions each receive their own copy so different
// providers can coexist without interference.
type Config struct {
	// LLM provider selection
	LLMProvider      string // ollama, lmstudio, llama_cpp, openrouter
	LocalLLM         string // model name for local providers
	OllamaBaseURL    string
	LMStudioBaseURL  string
	LlamaCppBaseURL  string
	OpenRouterAPIKey string
	OpenRouterModel  string

	// Search backend selection
	SearchAPI        string // tavily, perplexity, searxng, duckduckgo
	TavilyAPIKey     string
	PerplexityAPIKey string
	SearXNGURL       string

	// Research loop settings
	MaxLoops            int
	FetchFullPage       bool
	StripThinkingTokens bool

	// Server settings
	DatabaseURL string
	Port        string
}

func Load() *Config {
	return &Config{
		LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
		LocalLLM:         getEnv("LOCAL_LLM", "llama3.2"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		LMStudioBaseURL:  getEnv("LMSTUDIO_BASE_URL", "http://localhost:1234/v1"),
		LlamaCppBaseURL:  getEnv("LLAMACPP_BASE_URL", "http://127.0.0.1:8080/v1"),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "stepfun/step-3.5-flash:free"),

		SearchAPI:        getEnv("SEARCH_API", "duckduckgo"),
		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		PerplexityAPIKey: getEnv("PERPLEXITY_API_KEY", ""),
		SearXNGURL:       getEnv("SEARXNG_URL", ""),

		MaxLoops:            getEnvAsInt("MAX_WEB_RESEARCH_LOOPS", 3),
		FetchFullPage:       getEnvAsBool("FETCH_FULL_PAGE", true),
		StripThinkingTokens: getEnvAsBool("STRIP_THINKING_TOKENS", true),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8081"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
