package research

import (
	"errors"
	"regexp"
	"strings"
)

var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkingTokens removes <think>...</think> blocks from LLM responses.
// Reasoning models (qwen3, deepseek-r1) emit these around their answers.
func StripThinkingTokens(s string) string {
	return strings.TrimSpace(thinkRegex.ReplaceAllString(s, ""))
}

// extractJSON pulls the first top-level JSON object out of a model
// response. Local models frequently wrap JSON in prose or code fences, so
// we take everything between the first '{' and the last '}'.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object found in response")
	}
	return s[start : end+1], nil
}

// truncateRunes cuts s to at most n runes. Byte-based slicing could split
// a multibyte character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
