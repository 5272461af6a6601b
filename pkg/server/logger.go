package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mikeboe/deep-researcher/pkg/database"
)

// DBLogHandler is a slog.Handler that writes records to the research_logs
// table so every job carries its own structured log trail.
type DBLogHandler struct {
	DB    *database.PostgresDB
	JobID uuid.UUID
}

func NewDBLogHandler(db *database.PostgresDB, jobID uuid.UUID) *DBLogHandler {
	return &DBLogHandler{
		DB:    db,
		JobID: jobID,
	}
}

func (h *DBLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true // Log everything
}

func (h *DBLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Extract attributes to JSON
	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	metaJSON, err := json.Marshal(attrs)
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO research_logs (job_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	// Use background context for the insert so log rows persist even when
	// the job context is cancelled mid-session.
	_, err = h.DB.Pool.Exec(context.Background(), query, h.JobID, r.Time, r.Level.String(), r.Message, metaJSON)
	return err
}

func (h *DBLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Attribute chaining is not needed for job logs; the base handler is
	// returned unchanged.
	return h
}

func (h *DBLogHandler) WithGroup(name string) slog.Handler {
	return h
}
