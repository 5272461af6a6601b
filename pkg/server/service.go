package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikeboe/deep-researcher/pkg/clients"
	"github.com/mikeboe/deep-researcher/pkg/config"
	"github.com/mikeboe/deep-researcher/pkg/database"
	"github.com/mikeboe/deep-researcher/pkg/research"
	"github.com/mikeboe/deep-researcher/pkg/search"
)

// Service owns the research jobs: persistence, background workers, and
// cancellation. Each job runs one research session in its own goroutine
// with its own controller; sessions share no mutable state.
type Service struct {
	DB  *database.PostgresDB
	Cfg *config.Config

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

func NewService(db *database.PostgresDB, cfg *config.Config) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
}

type Job struct {
	ID        uuid.UUID       `json:"id"`
	Topic     string          `json:"topic"`
	Status    string          `json:"status"`
	Report    *string         `json:"report,omitempty"`
	State     json.RawMessage `json:"state,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Config    json.RawMessage `json:"config"`
}

type CreateJobRequest struct {
	Topic    string `json:"topic" binding:"required"`
	MaxLoops int    `json:"max_loops,omitempty"`
}

func (s *Service) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	maxLoops := req.MaxLoops
	if maxLoops < 1 {
		maxLoops = s.Cfg.MaxLoops
	}

	configJSON, _ := json.Marshal(map[string]interface{}{
		"max_loops":       maxLoops,
		"llm_provider":    s.Cfg.LLMProvider,
		"search_api":      s.Cfg.SearchAPI,
		"fetch_full_page": s.Cfg.FetchFullPage,
	})

	jobID := uuid.New()
	query := `
		INSERT INTO research_jobs (id, topic, status, config)
		VALUES ($1, $2, 'pending', $3)
		RETURNING id, topic, status, created_at, updated_at
	`

	job := &Job{}
	err := s.DB.Pool.QueryRow(ctx, query, jobID, req.Topic, configJSON).Scan(
		&job.ID, &job.Topic, &job.Status, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// Start background worker
	go s.runWorker(job.ID, req.Topic, maxLoops)

	return job, nil
}

// CancelJob signals a running job's session to finalize with whatever
// partial summary and sources it accumulated.
func (s *Service) CancelJob(id uuid.UUID) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	query := `
		SELECT id, topic, status, report, state, created_at, updated_at, config
		FROM research_jobs
		WHERE id = $1
	`
	job := &Job{}
	err := s.DB.Pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.Topic, &job.Status, &job.Report, &job.State, &job.CreatedAt, &job.UpdatedAt, &job.Config,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context) ([]Job, error) {
	query := `
		SELECT id, topic, status, report, state, created_at, updated_at, config
		FROM research_jobs
		ORDER BY created_at DESC
		LIMIT 50
	`
	rows, err := s.DB.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Topic, &job.Status, &job.Report, &job.State, &job.CreatedAt, &job.UpdatedAt, &job.Config); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (s *Service) GetJobLogs(ctx context.Context, jobID uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, timestamp, level, message, metadata
		FROM research_logs
		WHERE job_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.Pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

type SourceRow struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (s *Service) GetJobSources(ctx context.Context, jobID uuid.UUID) ([]SourceRow, error) {
	query := `
		SELECT position, url, title, content
		FROM research_sources
		WHERE job_id = $1
		ORDER BY position ASC
	`
	rows, err := s.DB.Pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceRow
	for rows.Next() {
		var src SourceRow
		if err := rows.Scan(&src.Position, &src.URL, &src.Title, &src.Content); err != nil {
			continue
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (s *Service) runWorker(jobID uuid.UUID, topic string, maxLoops int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.mu.Lock()
	s.cancels[jobID] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, jobID)
		s.mu.Unlock()
	}()

	// Update status to running
	_, _ = s.DB.Pool.Exec(ctx, "UPDATE research_jobs SET status = 'running', updated_at = NOW() WHERE id = $1", jobID)

	dbLogger := slog.New(NewDBLogHandler(s.DB, jobID))

	llm, err := clients.New(s.Cfg)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("Failed to init LLM client: %v", err))
		return
	}
	searcher, err := search.New(s.Cfg)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("Failed to init search provider: %v", err))
		return
	}

	ctrl := research.NewController(research.Config{
		MaxLoops:            maxLoops,
		FetchFullPage:       s.Cfg.FetchFullPage,
		StripThinkingTokens: s.Cfg.StripThinkingTokens,
	}, llm, searcher)
	ctrl.Logger = dbLogger

	// Persist a state snapshot and the source rows after every completed
	// iteration so clients can poll progress.
	ctrl.OnIteration = func(state research.ResearchState) {
		stateJSON, err := json.Marshal(state)
		if err != nil {
			dbLogger.Error("Failed to marshal state", "error", err)
			return
		}

		bg := context.Background()
		if _, err := s.DB.Pool.Exec(bg,
			"UPDATE research_jobs SET state = $2, updated_at = NOW() WHERE id = $1",
			jobID, stateJSON); err != nil {
			dbLogger.Error("Failed to save state to DB", "error", err)
		}

		for i, src := range state.Sources {
			content := src.ShortContent
			if src.FullContent != "" {
				content = src.FullContent
			}
			if _, err := s.DB.Pool.Exec(bg, `
				INSERT INTO research_sources (job_id, position, url, title, content)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (job_id, url) DO NOTHING
			`, jobID, i, src.URL, src.Title, content); err != nil {
				dbLogger.Error("Failed to save source", "url", src.URL, "error", err)
			}
		}
	}

	report, err := ctrl.Run(ctx, topic)
	if err != nil {
		s.failJob(jobID, fmt.Sprintf("Research failed: %v", err))
		return
	}

	_, err = s.DB.Pool.Exec(context.Background(),
		"UPDATE research_jobs SET status = 'completed', report = $2, updated_at = NOW() WHERE id = $1",
		jobID, report.Markdown())
	if err != nil {
		dbLogger.Error("Failed to save final report to DB", "error", err)
	}
}

func (s *Service) failJob(jobID uuid.UUID, reason string) {
	dbLogger := slog.New(NewDBLogHandler(s.DB, jobID))
	dbLogger.Error(reason)

	_, _ = s.DB.Pool.Exec(context.Background(), "UPDATE research_jobs SET status = 'failed', updated_at = NOW() WHERE id = $1", jobID)
}
