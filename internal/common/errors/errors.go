// Package errors provides standardized error handling for the orchestration
// pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Stage faults: fatal to the whole query.
	ErrCodeAngleGenerationFailed ErrorCode = "ANGLE_GENERATION_FAILED"
	ErrCodeOrchestrationFailed   ErrorCode = "ORCHESTRATION_FAILED"

	// Branch faults: isolated to a single angle.
	ErrCodeConversationCreateFailed ErrorCode = "CONVERSATION_CREATE_FAILED"
	ErrCodeNoMessageID              ErrorCode = "NO_MESSAGE_ID"
	ErrCodeMessageFetchFailed       ErrorCode = "MESSAGE_FETCH_FAILED"
	ErrCodeAssistantReportedFailure ErrorCode = "ASSISTANT_REPORTED_FAILURE"

	// Degraded-but-successful outcomes.
	ErrCodeContradictionCheckFailed ErrorCode = "CONTRADICTION_CHECK_FAILED"
	ErrCodeSynthesisFailed          ErrorCode = "SYNTHESIS_FAILED"
	ErrCodeNoValidResponses         ErrorCode = "NO_VALID_RESPONSES"

	// Capability transport failures.
	ErrCodeGenAITimeout     ErrorCode = "GENAI_TIMEOUT"
	ErrCodeGenAIFailed      ErrorCode = "GENAI_REQUEST_FAILED"
	ErrCodeAssistantTimeout ErrorCode = "ASSISTANT_TIMEOUT"
	ErrCodeStoreFailed      ErrorCode = "RESULT_STORE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewAngleGenerationFailedError marks the whole query as failed: without
// angles there is nothing to fan out.
func NewAngleGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAngleGenerationFailed,
		Message:   "Failed to generate analytical angles",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConversationCreateFailedError creates a branch-level creation error.
func NewConversationCreateFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConversationCreateFailed,
		Message:   "Assistant conversation could not be created",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoMessageIDError creates a branch-level error for a creation response
// that lacked a message identifier.
func NewNoMessageIDError(conversationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoMessageID,
		Message:   "Conversation created without an initial message id",
		Details:   fmt.Sprintf("conversationId: %s", conversationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageFetchFailedError creates a branch-level transport error raised
// after the poll budget was spent on failing fetches.
func NewMessageFetchFailedError(err error, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageFetchFailed,
		Message:   "Message could not be fetched from the assistant",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"attempts": attempts},
		Timestamp: time.Now().UTC(),
	}
}

// NewContradictionCheckFailedError marks a degraded contradiction analysis.
func NewContradictionCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContradictionCheckFailed,
		Message:   "Contradiction analysis call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisFailedError marks a degraded report synthesis.
func NewSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisFailed,
		Message:   "Report synthesis call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreFailedError creates a result-store transport error.
func NewStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreFailed,
		Message:   "Stored result could not be retrieved",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAIFailedError creates a capability-level text-generation error.
func NewGenAIFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAIFailed,
		Message:   "Text generation request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// GetErrorCategory groups codes by the recovery boundary that handles them.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeAngleGenerationFailed, ErrCodeOrchestrationFailed:
		return "stage"
	case ErrCodeConversationCreateFailed, ErrCodeNoMessageID,
		ErrCodeMessageFetchFailed, ErrCodeAssistantReportedFailure:
		return "branch"
	case ErrCodeContradictionCheckFailed, ErrCodeSynthesisFailed, ErrCodeNoValidResponses:
		return "degraded"
	default:
		return "transport"
	}
}

// IsRetryable reports whether retrying the same call could help. Stage faults
// are terminal for the query; most transport faults are not.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
