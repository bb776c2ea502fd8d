// Package orchestrator sequences the query pipeline: generate angles, fan
// out one assistant conversation per angle, normalize the survivors, flag
// contradictions, and synthesize the final report.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/common/metrics"
	"query-orchestrator/internal/models"
	anglegeneration "query-orchestrator/internal/pipeline/angle-generation"
	angleresolution "query-orchestrator/internal/pipeline/angle-resolution"
	synthesizereport "query-orchestrator/internal/pipeline/synthesize-report"
)

// AngleGenerator produces the analytical angles for one query.
type AngleGenerator interface {
	Execute(ctx context.Context, input *anglegeneration.Input) (*anglegeneration.Output, error)
}

// AngleResolver resolves one angle; failures stay inside the result.
type AngleResolver interface {
	Execute(ctx context.Context, input *angleresolution.Input) *models.AngleResult
}

// Normalizer projects branch outcomes into the canonical response shape.
type Normalizer interface {
	Execute(results []models.AngleResult) []models.NormalizedResponse
}

// ContradictionChecker annotates a batch with one shared judgment.
type ContradictionChecker interface {
	Execute(ctx context.Context, responses []models.NormalizedResponse) []models.NormalizedResponse
}

// Synthesizer merges the batch into the final report.
type Synthesizer interface {
	Execute(ctx context.Context, input *synthesizereport.Input) *models.SynthesizedReport
}

// FeedbackSender reports per-message outcomes back to the assistant service.
type FeedbackSender interface {
	GiveFeedback(ctx context.Context, messageID, feedback string) error
}

type Orchestrator struct {
	angles         AngleGenerator
	resolver       AngleResolver
	normalizer     Normalizer
	contradictions ContradictionChecker
	synthesizer    Synthesizer
	feedback       FeedbackSender
	logger         logger.Logger
}

func New(
	angles AngleGenerator,
	resolver AngleResolver,
	normalizer Normalizer,
	contradictions ContradictionChecker,
	synthesizer Synthesizer,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		angles:         angles,
		resolver:       resolver,
		normalizer:     normalizer,
		contradictions: contradictions,
		synthesizer:    synthesizer,
		logger:         log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// WithFeedback enables best-effort success feedback on completed branches.
func (o *Orchestrator) WithFeedback(sender FeedbackSender) *Orchestrator {
	o.feedback = sender
	return o
}

// Orchestrate runs the whole pipeline for one query and always returns a
// well-formed result, never a fault.
//
// Success reports whether the pipeline itself completed. It stays true even
// when every branch failed: in that case FinalReport.Error carries
// "no_valid_responses" and ResponsesProcessed is zero. Callers that only
// shallow-check Success must look at FinalReport.Error to distinguish an
// empty outcome from a usable one.
func (o *Orchestrator) Orchestrate(ctx context.Context, query string) (result *models.OrchestrationResult) {
	started := time.Now()
	log := o.logger.With(map[string]interface{}{"query": query})

	defer func() {
		if r := recover(); r != nil {
			log.Error("orchestration panic", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			result = &models.OrchestrationResult{
				Success:       false,
				OriginalQuery: query,
				Error:         fmt.Sprintf("orchestration panic: %v", r),
			}
		}
		status := "success"
		if !result.Success {
			status = "failure"
		}
		metrics.OrchestrationsTotal.WithLabelValues(status).Inc()
		metrics.OrchestrationDuration.Observe(time.Since(started).Seconds())
	}()

	log.Info("starting orchestration", nil)

	generated, err := o.angles.Execute(ctx, &anglegeneration.Input{Query: query})
	if err != nil {
		log.Error("angle generation failed", map[string]interface{}{"error": err.Error()})
		return &models.OrchestrationResult{
			Success:       false,
			OriginalQuery: query,
			Error:         err.Error(),
		}
	}
	angles := generated.Angles
	log.Info("angles generated", map[string]interface{}{"count": len(angles)})

	raw := o.resolveAll(ctx, angles)

	normalized := o.normalizer.Execute(raw)
	analyzed := o.contradictions.Execute(ctx, normalized)

	report := o.synthesizer.Execute(ctx, &synthesizereport.Input{
		OriginalQuery: query,
		Responses:     analyzed,
	})

	o.sendFeedback(ctx, raw)

	log.Info("orchestration completed", map[string]interface{}{
		"angles":    len(angles),
		"responses": len(analyzed),
		"duration":  time.Since(started).String(),
	})

	return &models.OrchestrationResult{
		Success:            true,
		OriginalQuery:      query,
		AnglesGenerated:    angles,
		ResponsesProcessed: len(analyzed),
		FinalReport:        report,
		RawResponses:       analyzed,
	}
}

// sendFeedback reports success on every branch that reached a completed
// answer. Failures are logged and dropped; feedback never affects the result.
func (o *Orchestrator) sendFeedback(ctx context.Context, results []models.AngleResult) {
	if o.feedback == nil {
		return
	}
	for _, r := range results {
		if r.Failed() || r.Data.State() != models.StateCompleted {
			continue
		}
		if err := o.feedback.GiveFeedback(ctx, r.MessageID, "success"); err != nil {
			o.logger.Warn("feedback delivery failed", map[string]interface{}{
				"messageId": r.MessageID,
				"error":     err.Error(),
			})
		}
	}
}
