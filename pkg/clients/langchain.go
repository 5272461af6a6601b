package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mikeboe/deep-researcher/pkg/config"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// LLMClient adapts a langchaingo model to the single completion call the
// research core consumes. All provider differences end here.
type LLMClient struct {
	model llms.Model
}

// New builds the inference client selected by LLM_PROVIDER. LM Studio,
// llama.cpp and OpenRouter all speak the OpenAI chat completions protocol,
// so they share one adapter with different base URLs.
func New(cfg *config.Config) (*LLMClient, error) {
	var (
		model llms.Model
		err   error
	)

	switch cfg.LLMProvider {
	case "ollama":
		model, err = ollama.New(
			ollama.WithModel(cfg.LocalLLM),
			ollama.WithServerURL(cfg.OllamaBaseURL),
		)
	case "lmstudio":
		model, err = openai.New(
			openai.WithModel(cfg.LocalLLM),
			openai.WithBaseURL(cfg.LMStudioBaseURL),
			openai.WithToken("not-needed"),
		)
	case "llama_cpp":
		model, err = openai.New(
			openai.WithModel(cfg.LocalLLM),
			openai.WithBaseURL(cfg.LlamaCppBaseURL),
			openai.WithToken("not-needed"),
		)
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			return nil, errors.New("OPENROUTER_API_KEY is not set")
		}
		model, err = openai.New(
			openai.WithModel(cfg.OpenRouterModel),
			openai.WithBaseURL(openRouterBaseURL),
			openai.WithToken(cfg.OpenRouterAPIKey),
		)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init %s client: %w", cfg.LLMProvider, err)
	}

	return &LLMClient{model: model}, nil
}

// Complete runs one blocking chat round trip and returns the raw text.
func (c *LLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}
	return resp.Choices[0].Content, nil
}
