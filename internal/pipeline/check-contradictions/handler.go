// internal/pipeline/check-contradictions/handler.go
package checkcontradictions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"query-orchestrator/internal/models"
)

const TaskType = "check-contradictions"

// analysisSchema is what the model is asked to return. Output that does not
// validate is kept raw instead of being trusted as structured.
const analysisSchema = `{
	"type": "object",
	"properties": {
		"has_contradictions": {"type": "boolean"},
		"contradictions": {"type": "array", "items": {"type": "string"}},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["has_contradictions", "contradictions", "confidence"]
}`

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

// Execute attaches one batch-level contradiction judgment to every response.
// Fewer than two responses short-circuits without a capability call; a
// capability failure degrades into an inline error on each entry rather than
// failing the batch.
func (h *Handler) Execute(ctx context.Context, responses []models.NormalizedResponse) []models.NormalizedResponse {
	if len(responses) < 2 {
		return responses
	}

	analysis := &models.ContradictionAnalysis{}

	text, err := h.completer.Complete(ctx, buildPrompt(responses))
	if err != nil {
		h.logger.Warn("contradiction analysis degraded", map[string]interface{}{
			"error": err.Error(),
		})
		analysis.Error = fmt.Sprintf("Error analyzing contradictions: %v", err)
	} else {
		analysis = parseAnalysis(text)
	}

	for i := range responses {
		responses[i].ContradictionAnalysis = analysis
	}

	h.logger.Info("contradiction analysis attached", map[string]interface{}{
		"responses":         len(responses),
		"hasContradictions": analysis.HasContradictions,
		"degraded":          analysis.Error != "",
	})

	return responses
}

func buildPrompt(responses []models.NormalizedResponse) string {
	var texts []string
	for _, r := range responses {
		texts = append(texts, fmt.Sprintf("Angle: %s\nResponse: %s", r.Angle, r.Content))
	}

	var parts []string
	parts = append(parts, "Analyze the following responses for contradictions or conflicting information:")
	parts = append(parts, "")
	parts = append(parts, strings.Join(texts, "\n\n"))
	parts = append(parts, "")
	parts = append(parts, "Identify any contradictions or conflicting information between these responses.")
	parts = append(parts, "Return a JSON object with:")
	parts = append(parts, `- "has_contradictions": boolean`)
	parts = append(parts, `- "contradictions": list of contradiction descriptions`)
	parts = append(parts, `- "confidence": confidence level (0-1)`)

	return strings.Join(parts, "\n")
}

// parseAnalysis validates and unmarshals the model's judgment. Output that is
// not the requested JSON shape is preserved verbatim in Raw.
func parseAnalysis(text string) *models.ContradictionAnalysis {
	doc := stripCodeFences(text)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(analysisSchema),
		gojsonschema.NewStringLoader(doc),
	)
	if err != nil || !result.Valid() {
		return &models.ContradictionAnalysis{Raw: text}
	}

	var parsed struct {
		HasContradictions bool     `json:"has_contradictions"`
		Contradictions    []string `json:"contradictions"`
		Confidence        float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return &models.ContradictionAnalysis{Raw: text}
	}

	return &models.ContradictionAnalysis{
		HasContradictions: parsed.HasContradictions,
		Contradictions:    parsed.Contradictions,
		Confidence:        parsed.Confidence,
		Raw:               text,
	}
}

// stripCodeFences unwraps ```json blocks that chat models like to emit.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
