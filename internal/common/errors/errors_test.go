// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_Error(t *testing.T) {
	err := NewConversationCreateFailedError("status 503")

	assert.Equal(t, "StandardError[CONVERSATION_CREATE_FAILED]: Assistant conversation could not be created", err.Error())
	assert.Equal(t, "status 503", err.Details)
	assert.False(t, err.Timestamp.IsZero())
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeAngleGenerationFailed, "stage"},
		{ErrCodeOrchestrationFailed, "stage"},
		{ErrCodeConversationCreateFailed, "branch"},
		{ErrCodeNoMessageID, "branch"},
		{ErrCodeMessageFetchFailed, "branch"},
		{ErrCodeAssistantReportedFailure, "branch"},
		{ErrCodeContradictionCheckFailed, "degraded"},
		{ErrCodeSynthesisFailed, "degraded"},
		{ErrCodeNoValidResponses, "degraded"},
		{ErrCodeGenAIFailed, "transport"},
		{ErrCodeStoreFailed, "transport"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewMessageFetchFailedError(errors.New("timeout"), 60)))
	assert.True(t, IsRetryable(NewStoreFailedError(errors.New("connection reset"))))
	assert.False(t, IsRetryable(NewAngleGenerationFailedError(errors.New("empty query"))))
	assert.False(t, IsRetryable(NewNoMessageIDError("conv-1")))
	assert.False(t, IsRetryable(errors.New("plain error")))
}
