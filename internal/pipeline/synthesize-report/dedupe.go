// internal/pipeline/synthesize-report/dedupe.go
package synthesizereport

import (
	"query-orchestrator/internal/models"
)

// DeduplicateSources merges the citation lists of all responses into one
// set, keeping the first occurrence of each sourceId and discarding later
// duplicates regardless of field differences. Sources without an id are
// dropped. Output order is first-seen order, so identical input always
// yields identical output.
func DeduplicateSources(responses []models.NormalizedResponse) []models.Source {
	seen := make(map[string]struct{})
	sources := []models.Source{}

	for _, response := range responses {
		for _, source := range response.Sources {
			if source.SourceID == "" {
				continue
			}
			if _, dup := seen[source.SourceID]; dup {
				continue
			}
			seen[source.SourceID] = struct{}{}
			sources = append(sources, source)
		}
	}

	return sources
}
