package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryGenerator produces the next web search query from the topic and the
// knowledge accumulated so far. It is stateless with respect to a session.
type QueryGenerator struct {
	llm           Inference
	stripThinking bool
}

// NewQueryGenerator wires a generator to an inference backend.
func NewQueryGenerator(llm Inference, stripThinking bool) *QueryGenerator {
	return &QueryGenerator{llm: llm, stripThinking: stripThinking}
}

// Generate asks the model for a single search query. An empty running
// summary yields a broad initial query; a non-empty one yields a query
// targeted at uncovered ground.
func (g *QueryGenerator) Generate(ctx context.Context, topic, runningSummary string) (string, error) {
	raw, err := g.llm.Complete(ctx, queryWriterInstructions, buildQueryWriterPrompt(topic, runningSummary))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if g.stripThinking {
		raw = StripThinkingTokens(raw)
	}

	jsonText, err := extractJSON(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var parsed struct {
		Query     string `json:"query"`
		Rationale string `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return "", fmt.Errorf("%w: invalid JSON: %v", ErrGeneration, err)
	}
	query := strings.TrimSpace(parsed.Query)
	if query == "" {
		return "", fmt.Errorf("%w: model returned an empty query", ErrGeneration)
	}
	return query, nil
}
