// internal/pipeline/angle-resolution/handler.go
package angleresolution

import (
	"context"
	"fmt"
	"time"

	"query-orchestrator/internal/common/assistant"
	"query-orchestrator/internal/common/metrics"
	"query-orchestrator/internal/models"
)

const TaskType = "angle-resolution"

// Branch error prefixes carried inside AngleResult.Error.
const (
	errCreateConversationFailed = "create_conversation_failed"
	errNoMessageID              = "no_message_id"
)

// AssistantClient is the slice of the assistant API this stage consumes.
type AssistantClient interface {
	CreateConversation(ctx context.Context, message string) (*assistant.ConversationHandle, error)
	GetMessage(ctx context.Context, conversationID, messageID string) (*models.MessagePayload, error)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Handler resolves one angle into an AngleResult. It never returns an error
// to its caller: every failure mode is captured in the result's Error field,
// so one branch can never take down its siblings.
type Handler struct {
	config *Config
	client AssistantClient
	logger Logger
}

func NewHandler(config *Config, client AssistantClient, log Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute opens a conversation for the angle and polls the initial message
// until it reaches a terminal state or the attempt budget runs out.
//
// A branch that spends its whole budget without reaching a terminal state
// still counts as resolved: the last fetched payload is handed back with an
// empty Error, and the caller reads the non-terminal status as a soft
// timeout.
func (h *Handler) Execute(ctx context.Context, input *Input) *models.AngleResult {
	angle := input.Angle
	log := h.logger.With(map[string]interface{}{"angle": angle})
	log.Info("resolving angle", nil)

	handle, err := h.client.CreateConversation(ctx, angle)
	if err != nil {
		metrics.AngleResolutionsTotal.WithLabelValues("create_failed").Inc()
		return &models.AngleResult{
			Angle: angle,
			Error: fmt.Sprintf("%s: %v", errCreateConversationFailed, err),
		}
	}
	if handle == nil || handle.ConversationID == "" {
		metrics.AngleResolutionsTotal.WithLabelValues("create_failed").Inc()
		return &models.AngleResult{
			Angle: angle,
			Error: fmt.Sprintf("%s: no conversation id in response", errCreateConversationFailed),
		}
	}
	if handle.MessageID == "" {
		metrics.AngleResolutionsTotal.WithLabelValues("create_failed").Inc()
		return &models.AngleResult{
			Angle:          angle,
			ConversationID: handle.ConversationID,
			Error:          fmt.Sprintf("%s: creation response carried no message id", errNoMessageID),
		}
	}

	payload, err := h.poll(ctx, log, handle)
	if err != nil {
		metrics.AngleResolutionsTotal.WithLabelValues("transport_failed").Inc()
		return &models.AngleResult{
			Angle:          angle,
			ConversationID: handle.ConversationID,
			MessageID:      handle.MessageID,
			Error:          err.Error(),
		}
	}

	if payload.State() == models.StateFailed {
		metrics.AngleResolutionsTotal.WithLabelValues("remote_failed").Inc()
		return &models.AngleResult{
			Angle:          angle,
			ConversationID: handle.ConversationID,
			MessageID:      handle.MessageID,
			Error:          remoteError(payload),
		}
	}

	status := "completed"
	if !payload.State().Terminal() {
		status = "soft_timeout"
		log.Warn("poll budget exhausted before a terminal state", map[string]interface{}{
			"lastStatus": payload.Status,
		})
	}
	metrics.AngleResolutionsTotal.WithLabelValues(status).Inc()

	return &models.AngleResult{
		Angle:          angle,
		ConversationID: handle.ConversationID,
		MessageID:      handle.MessageID,
		Data:           payload,
	}
}

// poll fetches the message at a fixed interval. Transient transport failures
// consume attempts from the same budget; the error only surfaces once the
// budget is spent without any successful fetch left to fall back on.
func (h *Handler) poll(ctx context.Context, log Logger, handle *assistant.ConversationHandle) (*models.MessagePayload, error) {
	maxAttempts := h.config.MaxPollAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last *models.MessagePayload
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		payload, err := h.client.GetMessage(ctx, handle.ConversationID, handle.MessageID)
		if err != nil {
			lastErr = err
			log.Warn("message fetch failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			if attempt == maxAttempts && last == nil {
				return nil, fmt.Errorf("message fetch failed after %d attempts: %w", maxAttempts, err)
			}
		} else {
			last = payload
			lastErr = nil
			if payload.State().Terminal() {
				metrics.PollAttempts.Observe(float64(attempt))
				return payload, nil
			}
		}

		if attempt < maxAttempts {
			if err := h.wait(ctx); err != nil {
				return nil, fmt.Errorf("polling cancelled: %w", err)
			}
		}
	}

	// Soft timeout: hand back the newest non-terminal payload we saw.
	if last != nil {
		return last, nil
	}
	return nil, fmt.Errorf("message fetch failed after %d attempts: %w", maxAttempts, lastErr)
}

func (h *Handler) wait(ctx context.Context) error {
	if h.config.PollInterval <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(h.config.PollInterval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// remoteError extracts the failure description reported by the assistant.
func remoteError(payload *models.MessagePayload) string {
	if payload.Metadata != nil {
		if msg, ok := payload.Metadata["error"].(string); ok && msg != "" {
			return msg
		}
	}
	if payload.Content != "" {
		return payload.Content
	}
	return "assistant reported failure"
}
