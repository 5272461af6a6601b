package research

import (
	"context"
	"fmt"
	"strings"
)

// Summarizer folds newly retrieved sources into the running summary. It
// only ever sees the sources passed per call, never the whole registry.
type Summarizer struct {
	llm           Inference
	stripThinking bool
}

// NewSummarizer wires a summarizer to an inference backend.
func NewSummarizer(llm Inference, stripThinking bool) *Summarizer {
	return &Summarizer{llm: llm, stripThinking: stripThinking}
}

// Summarize returns the updated summary. With an empty existing summary
// this is the first synthesis; otherwise the new sources are integrated
// into the existing text rather than replacing it. On error the caller
// keeps the previous summary unchanged.
func (s *Summarizer) Summarize(ctx context.Context, topic, existingSummary string, newSources []Source) (string, error) {
	raw, err := s.llm.Complete(ctx, summarizerInstructions, buildSummarizerPrompt(topic, existingSummary, newSources))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarization, err)
	}
	if s.stripThinking {
		raw = StripThinkingTokens(raw)
	}

	updated := strings.TrimSpace(raw)
	if updated == "" {
		return "", fmt.Errorf("%w: model returned an empty summary", ErrSummarization)
	}
	return updated, nil
}
