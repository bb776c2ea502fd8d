// Package store keeps finished orchestration results for later lookup by
// query id. Entries are TTL-bounded: this is a cache for the status
// endpoint, not durable state.
package store

import (
	"context"
	"errors"

	"query-orchestrator/internal/models"
)

// ErrNotFound is returned when no result exists for the given id (or its
// TTL has elapsed).
var ErrNotFound = errors.New("store: result not found")

type Store interface {
	Save(ctx context.Context, id string, result *models.OrchestrationResult) error
	Get(ctx context.Context, id string) (*models.OrchestrationResult, error)
}
