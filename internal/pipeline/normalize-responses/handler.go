// internal/pipeline/normalize-responses/handler.go
package normalizeresponses

import (
	"query-orchestrator/internal/models"
)

const TaskType = "normalize-responses"

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	logger Logger
}

func NewHandler(log Logger) *Handler {
	return &Handler{
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute projects raw branch outcomes into the canonical response shape.
// Failed branches are dropped; survivors keep their input order. Missing
// optional fields default to empty values instead of failing.
func (h *Handler) Execute(results []models.AngleResult) []models.NormalizedResponse {
	normalized := make([]models.NormalizedResponse, 0, len(results))

	for _, result := range results {
		if result.Error != "" {
			h.logger.Debug("skipping failed branch", map[string]interface{}{
				"angle": result.Angle,
				"error": result.Error,
			})
			continue
		}
		if result.Data == nil {
			h.logger.Debug("skipping branch without data", map[string]interface{}{
				"angle": result.Angle,
			})
			continue
		}

		data := result.Data
		response := models.NormalizedResponse{
			Angle:          result.Angle,
			ConversationID: result.ConversationID,
			MessageID:      result.MessageID,
			Content:        data.Content,
			Metadata:       data.Metadata,
			Timestamp:      data.Timestamp,
			Status:         data.Status,
			Sources:        data.Sources,
		}
		if response.Metadata == nil {
			response.Metadata = map[string]interface{}{}
		}
		if response.Sources == nil {
			response.Sources = []models.Source{}
		}

		normalized = append(normalized, response)
	}

	h.logger.Info("responses normalized", map[string]interface{}{
		"in":  len(results),
		"out": len(normalized),
	})

	return normalized
}
