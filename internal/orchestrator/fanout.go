// internal/orchestrator/fanout.go
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"query-orchestrator/internal/common/metrics"
	"query-orchestrator/internal/models"
	angleresolution "query-orchestrator/internal/pipeline/angle-resolution"
)

// resolveAll runs one resolver goroutine per angle and joins on all of them.
// Results land in a pre-sized slice indexed by submission position, so the
// output order matches the input order no matter which branch finishes
// first. A panicking branch becomes a synthetic failed result before the
// join point; nothing cancels or delays a sibling.
func (o *Orchestrator) resolveAll(ctx context.Context, angles []string) []models.AngleResult {
	results := make([]models.AngleResult, len(angles))

	var wg sync.WaitGroup
	for i, angle := range angles {
		wg.Add(1)
		metrics.ActiveBranches.Inc()

		go func(slot int, angle string) {
			defer wg.Done()
			defer metrics.ActiveBranches.Dec()
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("angle branch panicked", map[string]interface{}{
						"angle": angle,
						"panic": fmt.Sprintf("%v", r),
					})
					results[slot] = models.AngleResult{
						Angle: angle,
						Error: fmt.Sprintf("panic while resolving angle: %v", r),
					}
				}
			}()

			res := o.resolver.Execute(ctx, &angleresolution.Input{Angle: angle})
			if res == nil {
				results[slot] = models.AngleResult{
					Angle: angle,
					Error: "resolver returned no result",
				}
				return
			}
			results[slot] = *res
		}(i, angle)
	}
	wg.Wait()

	return results
}
