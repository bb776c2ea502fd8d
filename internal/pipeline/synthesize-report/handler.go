// internal/pipeline/synthesize-report/handler.go
package synthesizereport

import (
	"context"
	"fmt"
	"strings"

	"query-orchestrator/internal/models"
)

const TaskType = "synthesize-report"

// ErrNoValidResponses is the report-level error code for an empty batch.
const ErrNoValidResponses = "no_valid_responses"

// Completer is the text-generation capability this stage consumes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
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

// Execute merges the annotated responses into one structured report. It never
// fails the pipeline: an empty batch or a capability failure collapses into
// the report's Error field.
func (h *Handler) Execute(ctx context.Context, input *Input) *models.SynthesizedReport {
	if len(input.Responses) == 0 {
		return &models.SynthesizedReport{Error: ErrNoValidResponses}
	}

	text, err := h.completer.Complete(ctx, buildPrompt(input))
	if err != nil {
		h.logger.Warn("synthesis degraded", map[string]interface{}{
			"error": err.Error(),
		})
		return &models.SynthesizedReport{
			Error: fmt.Sprintf("Failed to synthesize report: %v", err),
		}
	}

	angles := make([]string, 0, len(input.Responses))
	for _, r := range input.Responses {
		angles = append(angles, r.Angle)
	}

	sources := DeduplicateSources(input.Responses)

	h.logger.Info("report synthesized", map[string]interface{}{
		"angles":  len(angles),
		"sources": len(sources),
	})

	return &models.SynthesizedReport{
		OriginalQuery:        input.OriginalQuery,
		ReportText:           text,
		SourceAngles:         angles,
		TotalAnglesProcessed: len(input.Responses),
		Sources:              sources,
	}
}

func buildPrompt(input *Input) string {
	var texts []string
	for _, r := range input.Responses {
		texts = append(texts, fmt.Sprintf("Angle: %s\nResponse: %s", r.Angle, r.Content))
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Original Query: %q", input.OriginalQuery))
	parts = append(parts, "")
	parts = append(parts, "Based on the following multi-angle analysis, create a comprehensive, structured report:")
	parts = append(parts, "")
	parts = append(parts, strings.Join(texts, "\n\n"))
	parts = append(parts, "")
	parts = append(parts, "Create a structured report with:")
	parts = append(parts, "1. Executive Summary")
	parts = append(parts, "2. Key Findings (organized by theme)")
	parts = append(parts, "3. Detailed Analysis")
	parts = append(parts, "4. Contradictions or Inconsistencies (if any)")
	parts = append(parts, "5. Recommendations or Next Steps")
	parts = append(parts, "6. Confidence Assessment")
	parts = append(parts, "")
	parts = append(parts, "Make the report comprehensive yet concise, and ensure it directly addresses the original query.")

	return strings.Join(parts, "\n")
}
