// internal/workers/campaign/intent-parser/tier2.go
package intentparser

import (
	"context"
	"errors"
	"time"

	apperrors "campaign-orchestrator/internal/common/errors"
	"campaign-orchestrator/internal/common/observability"
	"campaign-orchestrator/internal/models"
	campaignsynthesis "campaign-orchestrator/internal/workers/campaign/campaign-synthesis"
	culturalinsights "campaign-orchestrator/internal/workers/campaign/cultural-insights"
	dataenrichment "campaign-orchestrator/internal/workers/campaign/data-enrichment"
	fallbacksynthesis "campaign-orchestrator/internal/workers/campaign/fallback-synthesis"
	imageanalysis "campaign-orchestrator/internal/workers/campaign/image-analysis"

	"golang.org/x/sync/errgroup"
)

const (
	stepImageAnalysis = "image_analysis"
	stepEnrichment    = "data_enrichment"
	stepCultural      = "cultural_insights"
	stepSynthesis     = "synthesis"

	maxEnrichmentLabels = 10
)

// RunSequential runs the best-effort steps, synthesizes, and falls back to
// the deterministic builder. Every step is attempted at most once.
func (h *Handler) RunSequential(ctx context.Context, req models.CampaignRequest, correlationID, productID string) (*models.CampaignDocument, models.GenerationMethod) {
	log := h.logger.With(map[string]interface{}{
		"correlationId": correlationID,
		"productId":     productID,
	})

	ctx, span := observability.StartSpan(ctx, "campaign.tier2")
	defer span.End()

	var image, enrichment, cultural Partial

	if req.S3Info.HasImage() {
		h.runStep(ctx, log, stepImageAnalysis, func(sctx context.Context) error {
			if h.deps.Images == nil {
				return apperrors.NewCollaboratorUnavailableError("image-analysis", nil)
			}
			out, err := h.deps.Images.Execute(sctx, &imageanalysis.Input{
				ProductName: req.ProductInfo.Name,
				S3Info:      req.S3Info,
			})
			if err != nil {
				return err
			}
			image.ImageAnalysis = out.ImageAnalysis
			h.persist(ctx, log, productID, models.RecordFieldImageAnalysis, out.ImageAnalysis)
			return nil
		})
	}

	enrich := func() {
		h.runStep(ctx, log, stepEnrichment, func(sctx context.Context) error {
			if h.deps.Enricher == nil {
				return apperrors.NewCollaboratorUnavailableError("data-enrichment", nil)
			}
			out, err := h.deps.Enricher.Execute(sctx, &dataenrichment.Input{
				ProductName: req.ProductInfo.Name,
				Category:    req.ProductInfo.Category,
				ImageLabels: image.ImageAnalysis.TopLabels(maxEnrichmentLabels),
			})
			if err != nil {
				return err
			}
			enrichment.Enrichment = out.Enrichment
			h.persist(ctx, log, productID, models.RecordFieldEnrichment, out.Enrichment)
			return nil
		})
	}

	analyzeCulture := func() {
		h.runStep(ctx, log, stepCultural, func(sctx context.Context) error {
			if h.deps.Cultural == nil {
				return apperrors.NewCollaboratorUnavailableError("cultural-insights", nil)
			}
			out, err := h.deps.Cultural.Execute(sctx, &culturalinsights.Input{
				ProductName: req.ProductInfo.Name,
				Category:    req.ProductInfo.Category,
				Markets:     req.TargetMarkets,
			})
			if err != nil {
				return err
			}
			cultural.Cultural = out.Cultural
			h.persist(ctx, log, productID, models.RecordFieldCultural, out.Cultural)
			return nil
		})
	}

	if h.config.ParallelEnrichment {
		var g errgroup.Group
		g.Go(func() error { enrich(); return nil })
		g.Go(func() error { analyzeCulture(); return nil })
		_ = g.Wait()
	} else {
		enrich()
		analyzeCulture()
	}

	record := Merge(correlationID, productID, req, image, enrichment, cultural)
	log.Info("tier2 steps finished", map[string]interface{}{
		"fields": record.Populated(),
	})

	var doc *models.CampaignDocument
	h.setStatus(ctx, log, productID, models.StatusSynthesizing)
	h.runStep(ctx, log, stepSynthesis, func(sctx context.Context) error {
		if h.deps.Synthesizer == nil {
			return apperrors.NewCollaboratorUnavailableError("campaign-synthesis", nil)
		}
		out, err := h.deps.Synthesizer.Execute(sctx, &campaignsynthesis.Input{Record: record})
		if err != nil {
			return err
		}
		doc, err = parseCampaign("campaign-synthesis", out.Text)
		return err
	})

	if doc != nil {
		record.Method = models.MethodTier2Synthesis
		return doc, models.MethodTier2Synthesis
	}

	record.Method = models.MethodTier2Fallback
	log.Info("building fallback campaign", map[string]interface{}{
		"fields": record.Populated(),
	})
	return fallbacksynthesis.BuildFallback(req, record), models.MethodTier2Fallback
}

// runStep executes one step under ctx. A step whose turn comes after the
// outer deadline is skipped. Failures are logged and swallowed.
func (h *Handler) runStep(ctx context.Context, log Logger, step string, fn func(context.Context) error) bool {
	start := time.Now()
	if ctx.Err() != nil {
		log.Warn("step skipped, request budget exhausted", map[string]interface{}{
			"step":      step,
			"errorCode": string(apperrors.ErrCodeDeadlineExceeded),
		})
		observeStep(step, apperrors.Reason(apperrors.ErrCodeDeadlineExceeded), start)
		return false
	}

	sctx, span := observability.StartSpan(ctx, "campaign.step."+step)
	defer span.End()

	err := fn(sctx)
	if err == nil {
		observeStep(step, "ok", start)
		return true
	}

	span.RecordError(err)
	code := apperrors.Classify(err)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = apperrors.ErrCodeDeadlineExceeded
	}
	observeStep(step, apperrors.Reason(code), start)
	log.Warn("step failed", map[string]interface{}{
		"step":       step,
		"errorCode":  string(code),
		"error":      err.Error(),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return false
}
