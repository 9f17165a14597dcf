// internal/workers/campaign/intent-parser/tier1.go
package intentparser

import (
	"context"
	"errors"
	"time"

	apperrors "campaign-orchestrator/internal/common/errors"
	"campaign-orchestrator/internal/common/metrics"
	"campaign-orchestrator/internal/common/observability"
	"campaign-orchestrator/internal/common/validation"
	"campaign-orchestrator/internal/models"
	campaignagent "campaign-orchestrator/internal/workers/campaign/campaign-agent"
)

const stepTier1 = "tier1_agent"

// TryAgent makes exactly one agent call. On failure it reports the reason
// used in the tier1_failed event.
func (h *Handler) TryAgent(ctx context.Context, req models.CampaignRequest, correlationID string) (*models.CampaignDocument, string, bool) {
	log := h.logger.With(map[string]interface{}{
		"correlationId": correlationID,
		"step":          stepTier1,
	})
	start := time.Now()

	fail := func(code apperrors.ErrorCode, err error) (*models.CampaignDocument, string, bool) {
		reason := apperrors.Reason(code)
		metrics.Tier1Failures.WithLabelValues(reason).Inc()
		observeStep(stepTier1, reason, start)
		log.Warn("tier1 agent failed", map[string]interface{}{
			"errorCode": string(code),
			"error":     err.Error(),
		})
		return nil, reason, false
	}

	if !h.config.Tier1Enabled || h.deps.Agent == nil || !h.deps.Agent.Configured() {
		return fail(apperrors.ErrCodeCollaboratorUnavailable, campaignagent.ErrAgentNotConfigured)
	}
	if ctx.Err() != nil {
		return fail(apperrors.ErrCodeDeadlineExceeded, ctx.Err())
	}

	ctx, span := observability.StartSpan(ctx, "campaign.tier1")
	defer span.End()

	actx, cancel := context.WithTimeout(ctx, h.config.Tier1Timeout)
	defer cancel()

	out, err := h.deps.Agent.Execute(actx, &campaignagent.Input{
		CorrelationID: correlationID,
		Request:       req,
	})
	if err != nil {
		span.RecordError(err)
		code := apperrors.Classify(err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			code = apperrors.ErrCodeDeadlineExceeded
		}
		return fail(code, err)
	}

	doc, err := parseCampaign("campaign-agent", out.Text)
	if err != nil {
		span.RecordError(err)
		return fail(apperrors.Classify(err), err)
	}

	observeStep(stepTier1, "ok", start)
	log.Info("tier1 agent produced a valid campaign", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
	})
	return doc, "", true
}

// parseCampaign extracts and validates a campaign from generative output,
// keeping a missing object apart from a schema failure.
func parseCampaign(service, text string) (*models.CampaignDocument, error) {
	candidate, found := validation.ExtractJSONObject(text)
	if !found {
		return nil, apperrors.NewMalformedOutputError(service, "no complete JSON object in output")
	}
	doc, ok, violations := validation.ExtractAndValidate(candidate)
	if !ok {
		return nil, apperrors.NewSchemaValidationError(violations)
	}
	return doc, nil
}

func observeStep(step, outcome string, start time.Time) {
	metrics.StepDuration.WithLabelValues(step, outcome).Observe(time.Since(start).Seconds())
}
