// internal/pipeline/angle-generation/handler.go
package anglegeneration

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const TaskType = "angle-generation"

var ErrGenerationFailed = errors.New("ANGLE_GENERATION_FAILED")

// Completer is the text-generation capability this stage consumes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	completer Completer
	logger    Logger
}

func NewHandler(completer Completer, log Logger) *Handler {
	return &Handler{
		completer: completer,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute turns one query into a small ordered set of analytical angles.
// Zero usable lines is a terminal failure for the whole query, not a
// retryable condition.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrGenerationFailed)
	}

	text, err := h.completer.Complete(ctx, buildPrompt(input.Query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	// Keep the provider's line order; only blank lines are dropped.
	var angles []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			angles = append(angles, trimmed)
		}
	}

	if len(angles) == 0 {
		return nil, fmt.Errorf("%w: no usable angles in completion", ErrGenerationFailed)
	}

	h.logger.Info("angles generated", map[string]interface{}{
		"count": len(angles),
	})

	return &Output{Angles: angles}, nil
}

func buildPrompt(query string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Given the following query: %q", query))
	parts = append(parts, "")
	parts = append(parts, "Generate 3-5 different analytical angles or perspectives to approach this query.")
	parts = append(parts, "Each angle should be a specific, focused question that would provide valuable insights.")
	parts = append(parts, "")
	parts = append(parts, "Return only the questions, one per line, without numbering or bullet points.")

	return strings.Join(parts, "\n")
}
