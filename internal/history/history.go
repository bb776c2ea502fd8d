// Package history keeps a best-effort audit trail of orchestrated queries in
// PostgreSQL. Writes are fire-and-forget from the caller's point of view:
// a failed insert is logged, never surfaced.
package history

import (
	"context"
	"time"

	"query-orchestrator/internal/common/database"
	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/models"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS orchestration_history (
	query_id            TEXT PRIMARY KEY,
	query               TEXT NOT NULL,
	success             BOOLEAN NOT NULL,
	angles_generated    INTEGER NOT NULL,
	responses_processed INTEGER NOT NULL,
	error               TEXT,
	duration_ms         BIGINT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertStatement = `
INSERT INTO orchestration_history
	(query_id, query, success, angles_generated, responses_processed, error, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const recentStatement = `
SELECT query_id, query, success, angles_generated, responses_processed, COALESCE(error, ''), duration_ms, created_at
FROM orchestration_history
ORDER BY created_at DESC
LIMIT $1`

// Record is one row of the audit trail.
type Record struct {
	QueryID            string
	Query              string
	Success            bool
	AnglesGenerated    int
	ResponsesProcessed int
	Error              string
	Duration           time.Duration
	CreatedAt          time.Time
}

type Store struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewStore(db *database.PostgresClient, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "history"}),
	}
}

// EnsureSchema creates the history table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, createTableStatement)
	return err
}

// Save records one orchestration outcome. Errors are logged and swallowed.
func (s *Store) Save(ctx context.Context, queryID string, result *models.OrchestrationResult, duration time.Duration) {
	rec := Record{
		QueryID:            queryID,
		Query:              result.OriginalQuery,
		Success:            result.Success,
		AnglesGenerated:    len(result.AnglesGenerated),
		ResponsesProcessed: result.ResponsesProcessed,
		Error:              result.Error,
		Duration:           duration,
		CreatedAt:          time.Now().UTC(),
	}

	var errVal interface{}
	if rec.Error != "" {
		errVal = rec.Error
	}

	_, err := s.db.Exec(ctx, insertStatement,
		rec.QueryID, rec.Query, rec.Success, rec.AnglesGenerated,
		rec.ResponsesProcessed, errVal, rec.Duration.Milliseconds(), rec.CreatedAt,
	)
	if err != nil {
		s.logger.Warn("history insert failed", map[string]interface{}{
			"queryId": queryID,
			"error":   err.Error(),
		})
	}
}

// Recent returns the newest records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx, recentStatement, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var durationMS int64
		if err := rows.Scan(&rec.QueryID, &rec.Query, &rec.Success, &rec.AnglesGenerated,
			&rec.ResponsesProcessed, &rec.Error, &durationMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
