package database

import (
	"context"
	"fmt"
)

func (db *PostgresDB) InitSchema(ctx context.Context) error {
	// 1. Research Jobs Table
	jobsQuery := `
		CREATE TABLE IF NOT EXISTS research_jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			topic TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			config JSONB,
			state JSONB,
			report TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, jobsQuery); err != nil {
		return fmt.Errorf("failed to create research_jobs table: %w", err)
	}

	// 2. Research Logs Table
	logsQuery := `
		CREATE TABLE IF NOT EXISTS research_logs (
			id SERIAL PRIMARY KEY,
			job_id UUID NOT NULL REFERENCES research_jobs(id) ON DELETE CASCADE,
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata JSONB
		);
	`
	if _, err := db.Pool.Exec(ctx, logsQuery); err != nil {
		return fmt.Errorf("failed to create research_logs table: %w", err)
	}

	// 3. Research Sources Table — one row per unique URL per job, kept in
	// insertion order via position.
	sourcesQuery := `
		CREATE TABLE IF NOT EXISTS research_sources (
			id SERIAL PRIMARY KEY,
			job_id UUID NOT NULL REFERENCES research_jobs(id) ON DELETE CASCADE,
			position INT NOT NULL,
			url TEXT NOT NULL,
			title TEXT,
			content TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (job_id, url)
		);
	`
	if _, err := db.Pool.Exec(ctx, sourcesQuery); err != nil {
		return fmt.Errorf("failed to create research_sources table: %w", err)
	}

	// Indexes for faster querying
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_research_logs_job_id ON research_logs(job_id)"); err != nil {
		return fmt.Errorf("failed to create index on research_logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_research_sources_job_id ON research_sources(job_id)"); err != nil {
		return fmt.Errorf("failed to create index on research_sources: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_research_jobs_created_at ON research_jobs(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on research_jobs: %w", err)
	}

	return nil
}
