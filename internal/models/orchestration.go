// internal/models/orchestration.go
package models

import "strings"

// MessageState is the lifecycle of an in-flight assistant answer. Transitions
// only move forward; Completed and Failed are terminal.
type MessageState string

const (
	StatePending    MessageState = "PENDING"
	StateProcessing MessageState = "PROCESSING"
	StateCompleted  MessageState = "COMPLETED"
	StateFailed     MessageState = "FAILED"
	StateUnknown    MessageState = "UNKNOWN"
)

// ParseMessageState maps the remote status string onto the canonical enum.
// The assistant service reports lowercase states; anything unrecognized is
// StateUnknown, which is non-terminal.
func ParseMessageState(s string) MessageState {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return StatePending
	case "PROCESSING", "IN_PROGRESS":
		return StateProcessing
	case "COMPLETED", "COMPLETE", "DONE":
		return StateCompleted
	case "FAILED", "ERROR":
		return StateFailed
	default:
		return StateUnknown
	}
}

// Terminal reports whether no further polling transition can occur.
func (s MessageState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Source is one citation attached to an assistant answer. Identity is
// SourceID: two sources with the same id are the same citation regardless of
// the other fields.
type Source struct {
	SourceID   string `json:"sourceId"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Excerpt    string `json:"excerpt,omitempty"`
	PageNumber int    `json:"pageNumber,omitempty"`
}

// MessagePayload is the body of one assistant message as returned by the
// message endpoint.
type MessagePayload struct {
	ID        string                 `json:"id"`
	Status    string                 `json:"status"`
	Content   string                 `json:"content"`
	Sources   []Source               `json:"sources"`
	Metadata  map[string]interface{} `json:"metadata"`
	Timestamp string                 `json:"timestamp"`
}

// State returns the canonical state for the payload's raw status.
func (m *MessagePayload) State() MessageState {
	return ParseMessageState(m.Status)
}

// AngleResult is the outcome of resolving one angle. Exactly one of the two
// shapes holds: Error == "" with Data set, or Error != "" with Data nil.
type AngleResult struct {
	Angle          string          `json:"angle"`
	ConversationID string          `json:"conversationId,omitempty"`
	MessageID      string          `json:"messageId,omitempty"`
	Data           *MessagePayload `json:"data,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// Failed reports whether the branch carried an error instead of data.
func (r *AngleResult) Failed() bool {
	return r.Error != "" || r.Data == nil
}

// ContradictionAnalysis is a batch-level judgment attached identically to
// every normalized response. When the capability call or the JSON it returned
// was unusable, Error carries the degradation and Raw the unparsed output.
type ContradictionAnalysis struct {
	HasContradictions bool     `json:"hasContradictions"`
	Contradictions    []string `json:"contradictions"`
	Confidence        float64  `json:"confidence"`
	Raw               string   `json:"raw,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// NormalizedResponse is an AngleResult with the error branch excluded:
// content and sources are guaranteed present (sources possibly empty).
type NormalizedResponse struct {
	Angle                 string                 `json:"angle"`
	ConversationID        string                 `json:"conversationId"`
	MessageID             string                 `json:"messageId"`
	Content               string                 `json:"content"`
	Metadata              map[string]interface{} `json:"metadata"`
	Timestamp             string                 `json:"timestamp"`
	Status                string                 `json:"status"`
	Sources               []Source               `json:"sources"`
	ContradictionAnalysis *ContradictionAnalysis `json:"contradictionAnalysis,omitempty"`
}

// SynthesizedReport is the merged narrative plus the deduplicated citation
// set, in first-seen order.
type SynthesizedReport struct {
	OriginalQuery        string   `json:"originalQuery"`
	ReportText           string   `json:"synthesizedReport"`
	SourceAngles         []string `json:"sourceAngles"`
	TotalAnglesProcessed int      `json:"totalAnglesProcessed"`
	Sources              []Source `json:"sources"`
	Error                string   `json:"error,omitempty"`
}

// OrchestrationResult is the outward contract of the whole pipeline.
//
// Success stays true when the pipeline ran to completion even if every branch
// failed; in that case FinalReport.Error carries "no_valid_responses".
// Success flips to false only for stage-level faults (angle generation
// failing outright, or an orchestrator panic).
type OrchestrationResult struct {
	Success            bool                 `json:"success"`
	OriginalQuery      string               `json:"originalQuery"`
	AnglesGenerated    []string             `json:"anglesGenerated,omitempty"`
	ResponsesProcessed int                  `json:"responsesProcessed"`
	FinalReport        *SynthesizedReport   `json:"finalReport,omitempty"`
	RawResponses       []NormalizedResponse `json:"rawResponses,omitempty"`
	Error              string               `json:"error,omitempty"`
}
