// internal/history/history_test.go
package history

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-orchestrator/internal/common/database"
	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := &database.PostgresClient{DB: db}
	return NewStore(client, logger.NewTestLogger(t)), mock
}

func TestStore_EnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orchestration_history").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save_SuccessfulRun(t *testing.T) {
	store, mock := newMockStore(t)

	result := &models.OrchestrationResult{
		Success:            true,
		OriginalQuery:      "tell me about X",
		AnglesGenerated:    []string{"a", "b", "c"},
		ResponsesProcessed: 2,
	}

	mock.ExpectExec("INSERT INTO orchestration_history").
		WithArgs("q-1", "tell me about X", true, 3, 2, nil, int64(1500), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store.Save(context.Background(), "q-1", result, 1500*time.Millisecond)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save_FailedRunKeepsError(t *testing.T) {
	store, mock := newMockStore(t)

	result := &models.OrchestrationResult{
		Success:       false,
		OriginalQuery: "tell me about X",
		Error:         "ANGLE_GENERATION_FAILED: empty query",
	}

	mock.ExpectExec("INSERT INTO orchestration_history").
		WithArgs("q-1", "tell me about X", false, 0, 0,
			"ANGLE_GENERATION_FAILED: empty query", int64(40), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store.Save(context.Background(), "q-1", result, 40*time.Millisecond)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save_InsertFailureIsSwallowed(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO orchestration_history").
		WillReturnError(errors.New("connection refused"))

	// No panic, no error surfaced; the audit trail is best effort.
	store.Save(context.Background(), "q-1", &models.OrchestrationResult{OriginalQuery: "q"}, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Recent(t *testing.T) {
	store, mock := newMockStore(t)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"query_id", "query", "success", "angles_generated",
		"responses_processed", "error", "duration_ms", "created_at",
	}).
		AddRow("q-2", "newer", true, 4, 4, "", int64(2000), created.Add(time.Hour)).
		AddRow("q-1", "older", false, 0, 0, "boom", int64(50), created)

	mock.ExpectQuery("SELECT (.+) FROM orchestration_history").
		WithArgs(10).
		WillReturnRows(rows)

	records, err := store.Recent(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q-2", records[0].QueryID)
	assert.Equal(t, 2*time.Second, records[0].Duration)
	assert.Equal(t, "boom", records[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Recent_QueryFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM orchestration_history").
		WillReturnError(errors.New("relation does not exist"))

	records, err := store.Recent(context.Background(), 10)

	require.Error(t, err)
	assert.Nil(t, records)
}
