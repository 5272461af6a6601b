package research

import "context"

// Inference is the single capability the core needs from a language model
// backend. Provider adapters live in pkg/clients; the core never branches
// on provider identity.
type Inference interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds the per-session settings the loop controller needs.
type Config struct {
	// MaxLoops is the inclusive upper bound on research iterations.
	MaxLoops int
	// FetchFullPage selects full page text over snippets when a search
	// backend supplies both.
	FetchFullPage bool
	// StripThinkingTokens removes <think> blocks from model output before
	// parsing. Reasoning models emit these.
	StripThinkingTokens bool
}

// Source is a deduplicated retrieved document. URL is the unique key within
// a session.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	// ShortContent is the snippet used for citations and summarization.
	ShortContent string `json:"short_content"`
	// FullContent is present only when full-page fetch is enabled.
	FullContent string `json:"full_content,omitempty"`
}

// Phase names a state of the research loop state machine.
type Phase string

const (
	PhaseInit            Phase = "init"
	PhaseGeneratingQuery Phase = "generating_query"
	PhaseSearching       Phase = "searching"
	PhaseIngesting       Phase = "ingesting"
	PhaseSummarizing     Phase = "summarizing"
	PhaseReflecting      Phase = "reflecting"
	PhaseLooping         Phase = "looping"
	PhaseFinalizing      Phase = "finalizing"
	PhaseDone            Phase = "done"
	PhaseFailed          Phase = "failed"
)

// ResearchState is the mutable session record. It is owned exclusively by
// one Controller for the lifetime of a research request and is never
// mutated by more than one iteration at a time.
type ResearchState struct {
	Topic          string   `json:"topic"`
	LoopCount      int      `json:"loop_count"`
	RunningSummary string   `json:"running_summary"`
	PendingQuery   string   `json:"pending_query"`
	Sources        []Source `json:"sources"`
	Phase          Phase    `json:"phase"`
}

// ReflectionResult is the Reflection Engine's verdict on the running
// summary. FollowUpQuery is set iff HasGap is true.
type ReflectionResult struct {
	HasGap        bool   `json:"has_gap"`
	KnowledgeGap  string `json:"knowledge_gap,omitempty"`
	FollowUpQuery string `json:"follow_up_query,omitempty"`
}

// Report is the final output of a research session.
type Report struct {
	Topic     string   `json:"topic"`
	Summary   string   `json:"summary"`
	Citations string   `json:"citations"`
	Sources   []Source `json:"sources"`
	LoopCount int      `json:"loop_count"`
}

// Markdown renders the report the way the original researcher did: the
// running summary followed by one citation line per unique source URL.
func (r *Report) Markdown() string {
	out := "## Summary\n\n" + r.Summary
	if r.Citations != "" {
		out += "\n\n### Sources:\n" + r.Citations
	}
	return out
}
