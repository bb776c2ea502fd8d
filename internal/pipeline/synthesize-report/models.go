// internal/pipeline/synthesize-report/models.go
package synthesizereport

import "query-orchestrator/internal/models"

type Input struct {
	OriginalQuery string                      `json:"originalQuery"`
	Responses     []models.NormalizedResponse `json:"responses"`
}
