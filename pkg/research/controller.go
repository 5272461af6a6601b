package research

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikeboe/deep-researcher/pkg/search"
)

// Retry bounds for the external boundary. The first query and each search
// get a small number of attempts with linear backoff; summarization and
// reflection are never retried, they have cheaper fallbacks.
const (
	maxGenerateAttempts = 3
	maxSearchAttempts   = 3
)

// Controller drives one research session through the loop:
// generate query, search, ingest, summarize, reflect, then loop or
// finalize. It owns the session's ResearchState exclusively; a single
// Controller must not be reused across sessions. Independent sessions run
// as independent Controller instances and share no mutable state.
type Controller struct {
	cfg      Config
	searcher search.Provider

	generator  *QueryGenerator
	summarizer *Summarizer
	reflector  *ReflectionEngine
	registry   *SourceRegistry
	state      *ResearchState

	Logger *slog.Logger

	// OnIteration, when set, receives a snapshot of the session state
	// after every completed iteration. Consumers use it for progressive
	// display or persistence; the snapshot is a copy and safe to retain.
	OnIteration func(state ResearchState)

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController assembles a session controller from a configuration, an
// inference backend, and a search backend.
func NewController(cfg Config, llm Inference, searcher search.Provider) *Controller {
	if cfg.MaxLoops < 1 {
		cfg.MaxLoops = 1
	}
	return &Controller{
		cfg:        cfg,
		searcher:   searcher,
		generator:  NewQueryGenerator(llm, cfg.StripThinkingTokens),
		summarizer: NewSummarizer(llm, cfg.StripThinkingTokens),
		reflector:  NewReflectionEngine(llm, cfg.StripThinkingTokens),
		registry:   NewSourceRegistry(cfg.FetchFullPage),
		state:      &ResearchState{Phase: PhaseInit},
		Logger:     slog.Default(),
		sleep:      sleepCtx,
	}
}

// Run executes the research loop for a topic and returns the final report.
// It returns an error only when no initial query could be produced; every
// other failure degrades the session instead of aborting it. Cancelling
// the context finalizes early with whatever partial summary and sources
// exist.
func (c *Controller) Run(ctx context.Context, topic string) (*Report, error) {
	st := c.state
	st.Topic = topic
	c.Logger.Info("Starting research session", "topic", topic, "max_loops", c.cfg.MaxLoops)

	// The query generator runs only for the very first query of a
	// session; every later iteration reuses reflection's follow-up query.
	st.Phase = PhaseGeneratingQuery
	query, err := c.initialQuery(ctx, topic)
	if err != nil {
		st.Phase = PhaseFailed
		c.Logger.Error("Could not start research", "error", err)
		return nil, fmt.Errorf("could not start research: %w", err)
	}
	st.PendingQuery = query

	for {
		if ctx.Err() != nil {
			c.Logger.Warn("Session cancelled, finalizing with partial results")
			return c.finalize(), nil
		}

		st.Phase = PhaseSearching
		c.Logger.Info("Searching", "query", st.PendingQuery, "loop", st.LoopCount)
		results := c.searchWithRetry(ctx, st.PendingQuery)

		if ctx.Err() != nil {
			return c.finalize(), nil
		}

		st.Phase = PhaseIngesting
		added := c.registry.Ingest(results)
		c.Logger.Info("Ingested search results", "returned", len(results), "new", added, "total", c.registry.Len())

		if ctx.Err() != nil {
			return c.finalize(), nil
		}

		st.Phase = PhaseSummarizing
		// Fast path: with zero new sources there is nothing to
		// incorporate and the summary is provably unchanged, so the
		// model call is skipped.
		if added > 0 {
			newSources := c.registry.AllSources()[c.registry.Len()-added:]
			updated, err := c.summarizer.Summarize(ctx, topic, st.RunningSummary, newSources)
			if err != nil {
				c.Logger.Warn("Summarization failed, keeping previous summary", "error", err)
			} else {
				st.RunningSummary = updated
			}
		}

		if ctx.Err() != nil {
			return c.finalize(), nil
		}

		st.Phase = PhaseReflecting
		reflection, err := c.reflector.Reflect(ctx, topic, st.RunningSummary)
		if err != nil {
			// Bad reflection signal biases toward terminating rather
			// than looping forever.
			c.Logger.Warn("Reflection failed, treating as no gap", "error", err)
			reflection = ReflectionResult{HasGap: false}
		}

		st.LoopCount++
		c.emitSnapshot()

		if reflection.HasGap && st.LoopCount < c.cfg.MaxLoops {
			st.Phase = PhaseLooping
			st.PendingQuery = reflection.FollowUpQuery
			c.Logger.Info("Knowledge gap found, continuing", "gap", reflection.KnowledgeGap, "next_query", reflection.FollowUpQuery)
			continue
		}

		if reflection.HasGap {
			c.Logger.Info("Loop budget reached, finalizing", "loops", st.LoopCount)
		} else {
			c.Logger.Info("No knowledge gap remains, finalizing", "loops", st.LoopCount)
		}
		return c.finalize(), nil
	}
}

// State returns a snapshot of the current session state.
func (c *Controller) State() ResearchState {
	return c.snapshot()
}

// initialQuery retries generation a few times with linear backoff. The
// session cannot proceed without it, so exhaustion is fatal.
func (c *Controller) initialQuery(ctx context.Context, topic string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		if attempt > 0 {
			c.Logger.Warn("Retrying query generation", "attempt", attempt+1, "last_error", lastErr)
			if err := c.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
				return "", lastErr
			}
		}
		query, err := c.generator.Generate(ctx, topic, "")
		if err == nil {
			return query, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d attempts: %w", maxGenerateAttempts, lastErr)
}

// searchWithRetry retries the search a few times with linear backoff. When
// every attempt fails it returns nil so the session proceeds with zero new
// results; one bad query must not abort research already accumulated.
func (c *Controller) searchWithRetry(ctx context.Context, query string) []search.Result {
	var lastErr error
	for attempt := 0; attempt < maxSearchAttempts; attempt++ {
		if attempt > 0 {
			c.Logger.Warn("Retrying search", "attempt", attempt+1, "last_error", lastErr)
			if err := c.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
				return nil
			}
		}
		results, err := c.searcher.Search(ctx, query)
		if err == nil {
			return results
		}
		lastErr = fmt.Errorf("%w: %v", ErrSearch, err)
		if ctx.Err() != nil {
			return nil
		}
	}
	c.Logger.Error("Search exhausted retries, proceeding with zero results", "query", query, "error", lastErr)
	return nil
}

// finalize composes the report from whatever the session accumulated and
// marks the state machine done.
func (c *Controller) finalize() *Report {
	st := c.state
	st.Phase = PhaseFinalizing
	st.PendingQuery = ""

	report := &Report{
		Topic:     st.Topic,
		Summary:   st.RunningSummary,
		Citations: c.registry.RenderCitations(),
		Sources:   c.registry.AllSources(),
		LoopCount: st.LoopCount,
	}

	st.Phase = PhaseDone
	c.emitSnapshot()
	c.Logger.Info("Research session finished", "loops", st.LoopCount, "sources", len(report.Sources))
	return report
}

func (c *Controller) snapshot() ResearchState {
	snap := *c.state
	snap.Sources = c.registry.AllSources()
	return snap
}

func (c *Controller) emitSnapshot() {
	if c.OnIteration == nil {
		return
	}
	c.OnIteration(c.snapshot())
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
