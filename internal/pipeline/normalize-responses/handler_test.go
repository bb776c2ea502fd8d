// internal/pipeline/normalize-responses/handler_test.go
package normalizeresponses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-orchestrator/internal/models"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t testing.TB
}

func NewTestLogger(t testing.TB) *TestLogger { return &TestLogger{t: t} }

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}
func (l *TestLogger) Debug(msg string, fields map[string]interface{}) {
	l.t.Logf("DEBUG: %s %v", msg, fields)
}
func (l *TestLogger) With(fields map[string]interface{}) Logger { return l }

// ==========================
// Tests
// ==========================

func completedResult(angle, content string) models.AngleResult {
	return models.AngleResult{
		Angle:          angle,
		ConversationID: "conv-" + angle,
		MessageID:      "msg-" + angle,
		Data: &models.MessagePayload{
			Status:  "COMPLETED",
			Content: content,
			Metadata: map[string]interface{}{
				"model": "test",
			},
			Sources: []models.Source{{SourceID: "s1", Title: "Doc"}},
		},
	}
}

func TestHandler_Execute_DropsFailedBranchesKeepsOrder(t *testing.T) {
	handler := NewHandler(NewTestLogger(t))

	results := []models.AngleResult{
		completedResult("a", "first"),
		{Angle: "b", Error: "create_conversation_failed: 503"},
		completedResult("c", "second"),
		{Angle: "d"}, // resolved with neither error nor data
		completedResult("e", "third"),
	}

	normalized := handler.Execute(results)

	require.Len(t, normalized, 3)
	assert.Equal(t, "a", normalized[0].Angle)
	assert.Equal(t, "c", normalized[1].Angle)
	assert.Equal(t, "e", normalized[2].Angle)
	assert.Equal(t, "second", normalized[1].Content)
	assert.Equal(t, "conv-c", normalized[1].ConversationID)
	assert.Equal(t, "msg-c", normalized[1].MessageID)
}

func TestHandler_Execute_DefaultsMissingOptionalFields(t *testing.T) {
	handler := NewHandler(NewTestLogger(t))

	results := []models.AngleResult{
		{
			Angle:          "bare",
			ConversationID: "conv-1",
			MessageID:      "msg-1",
			Data:           &models.MessagePayload{Status: "COMPLETED", Content: "text"},
		},
	}

	normalized := handler.Execute(results)

	require.Len(t, normalized, 1)
	assert.NotNil(t, normalized[0].Metadata)
	assert.Empty(t, normalized[0].Metadata)
	assert.NotNil(t, normalized[0].Sources)
	assert.Empty(t, normalized[0].Sources)
}

func TestHandler_Execute_EmptyBatch(t *testing.T) {
	handler := NewHandler(NewTestLogger(t))

	normalized := handler.Execute(nil)

	assert.NotNil(t, normalized)
	assert.Empty(t, normalized)
}

func TestHandler_Execute_AllFailed(t *testing.T) {
	handler := NewHandler(NewTestLogger(t))

	normalized := handler.Execute([]models.AngleResult{
		{Angle: "a", Error: "no_message_id: empty"},
		{Angle: "b", Error: "assistant reported failure"},
	})

	assert.NotNil(t, normalized)
	assert.Empty(t, normalized)
}
