package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ReflectionEngine decides whether the running summary adequately covers
// the topic, and if not, what to search for next.
type ReflectionEngine struct {
	llm           Inference
	stripThinking bool
}

// NewReflectionEngine wires a reflection engine to an inference backend.
func NewReflectionEngine(llm Inference, stripThinking bool) *ReflectionEngine {
	return &ReflectionEngine{llm: llm, stripThinking: stripThinking}
}

// Reflect analyzes the summary for knowledge gaps. A gap verdict must come
// with a well-formed follow-up query; a result claiming a gap without one
// is treated as a parse failure.
func (r *ReflectionEngine) Reflect(ctx context.Context, topic, runningSummary string) (ReflectionResult, error) {
	raw, err := r.llm.Complete(ctx, reflectionInstructions, buildReflectionPrompt(topic, runningSummary))
	if err != nil {
		return ReflectionResult{}, fmt.Errorf("%w: %v", ErrReflection, err)
	}
	if r.stripThinking {
		raw = StripThinkingTokens(raw)
	}

	jsonText, err := extractJSON(raw)
	if err != nil {
		return ReflectionResult{}, fmt.Errorf("%w: %v", ErrReflection, err)
	}

	var result ReflectionResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return ReflectionResult{}, fmt.Errorf("%w: invalid JSON: %v", ErrReflection, err)
	}

	result.FollowUpQuery = strings.TrimSpace(result.FollowUpQuery)
	if result.HasGap && result.FollowUpQuery == "" {
		return ReflectionResult{}, fmt.Errorf("%w: gap reported without a follow-up query", ErrReflection)
	}
	if !result.HasGap {
		result.FollowUpQuery = ""
	}
	return result, nil
}
