// internal/workers/campaign/intent-parser/handler.go
package intentparser

import (
	"context"
	"sync"
	"time"

	"campaign-orchestrator/internal/common/database"
	apperrors "campaign-orchestrator/internal/common/errors"
	"campaign-orchestrator/internal/common/metrics"
	"campaign-orchestrator/internal/common/observability"
	"campaign-orchestrator/internal/common/validation"
	"campaign-orchestrator/internal/models"
	campaignagent "campaign-orchestrator/internal/workers/campaign/campaign-agent"
	campaignsynthesis "campaign-orchestrator/internal/workers/campaign/campaign-synthesis"
	culturalinsights "campaign-orchestrator/internal/workers/campaign/cultural-insights"
	dataenrichment "campaign-orchestrator/internal/workers/campaign/data-enrichment"
	imageanalysis "campaign-orchestrator/internal/workers/campaign/image-analysis"
	visualqueue "campaign-orchestrator/internal/workers/campaign/visual-queue"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "generate-campaign"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type AgentClient interface {
	Configured() bool
	Execute(ctx context.Context, input *campaignagent.Input) (*campaignagent.Output, error)
}

type ImageAnalyzer interface {
	Execute(ctx context.Context, input *imageanalysis.Input) (*imageanalysis.Output, error)
}

type Enricher interface {
	Execute(ctx context.Context, input *dataenrichment.Input) (*dataenrichment.Output, error)
}

type CulturalAnalyzer interface {
	Execute(ctx context.Context, input *culturalinsights.Input) (*culturalinsights.Output, error)
}

type Synthesizer interface {
	Execute(ctx context.Context, input *campaignsynthesis.Input) (*campaignsynthesis.Output, error)
}

type VisualQueue interface {
	Enabled() bool
	Execute(ctx context.Context, input *visualqueue.Input) (*visualqueue.Output, error)
}

type Archive interface {
	Save(ctx context.Context, c database.ArchivedCampaign) error
}

// Dependencies wires the collaborators. Agent, Visual and Archive are
// optional; Records and Events default to no-ops.
type Dependencies struct {
	Agent       AgentClient
	Images      ImageAnalyzer
	Enricher    Enricher
	Cultural    CulturalAnalyzer
	Synthesizer Synthesizer
	Visual      VisualQueue
	Archive     Archive
	Records     database.RecordStore
	Events      EventSink
	Metrics     *observability.Observability
}

type Handler struct {
	config *Config
	deps   Dependencies
	logger Logger

	newID      func() string
	background sync.WaitGroup
}

func NewHandler(config *Config, deps Dependencies, log Logger) *Handler {
	if deps.Records == nil {
		deps.Records = database.NoopRecordStore{}
	}
	if deps.Events == nil {
		deps.Events = MultiSink{}
	}
	return &Handler{
		config: config,
		deps:   deps,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		newID: uuid.NewString,
	}
}

// GenerateCampaign runs Tier-1 and, only once it has conclusively failed,
// Tier-2. It always returns a schema-valid campaign.
func (h *Handler) GenerateCampaign(ctx context.Context, req models.CampaignRequest) *Result {
	start := time.Now()
	correlationID := h.newID()
	productID := h.newID()
	log := h.logger.With(map[string]interface{}{
		"correlationId": correlationID,
		"productId":     productID,
	})

	ctx, cancel := context.WithTimeout(ctx, h.config.OuterBudget)
	defer cancel()
	deadline, _ := ctx.Deadline()
	ctx = context.WithValue(ctx, effectsDeadlineKey{}, deadline.Add(h.config.StoreTimeout))

	ctx, span := observability.StartSpan(ctx, "campaign.generate",
		attribute.String("correlation_id", correlationID),
		attribute.String("product_id", productID),
	)
	defer span.End()

	log.Info("campaign generation started", map[string]interface{}{
		"product":  req.ProductInfo.Name,
		"hasImage": req.S3Info.HasImage(),
		"markets":  len(req.TargetMarkets),
		"budgetMs": h.config.OuterBudget.Milliseconds(),
	})
	h.persist(ctx, log, productID, models.RecordFieldRequest, req)
	h.persist(ctx, log, productID, models.RecordFieldCorrelationID, correlationID)

	result := &Result{CorrelationID: correlationID, ProductID: productID}

	h.emit(ctx, correlationID, productID, EventTier1Attempt, "tier1")
	doc, reason, ok := h.TryAgent(ctx, req, correlationID)
	if ok {
		h.emit(ctx, correlationID, productID, EventTier1Succeeded, "tier1")
		result.Method = models.MethodTier1Agent
		result.Campaign = doc
	} else {
		h.emit(ctx, correlationID, productID, EventTier1Failed+":"+reason, "tier1")
		h.emit(ctx, correlationID, productID, EventTier2Started, "tier2")

		result.Campaign, result.Method = h.RunSequential(ctx, req, correlationID, productID)
		if result.Method == models.MethodTier2Synthesis {
			h.emit(ctx, correlationID, productID, EventTier2Succeeded, "tier2")
		} else {
			h.emit(ctx, correlationID, productID, EventTier2Fallback, "tier2")
			result.Warning = fallbackWarning
		}
	}

	h.finish(ctx, log, req, result)

	elapsed := time.Since(start)
	metrics.CampaignRequests.WithLabelValues(string(result.Method)).Inc()
	h.deps.Metrics.RecordRequest(ctx, string(result.Method), elapsed)
	span.SetAttributes(attribute.String("generation_method", string(result.Method)))

	log.Info("campaign generation completed", map[string]interface{}{
		"generationMethod": string(result.Method),
		"durationMs":       elapsed.Milliseconds(),
	})
	return result
}

// finish stores the outcome and starts the side effects that must not hold
// up the response.
func (h *Handler) finish(ctx context.Context, log Logger, req models.CampaignRequest, result *Result) {
	h.persist(ctx, log, result.ProductID, models.RecordFieldMethod, string(result.Method))
	h.persist(ctx, log, result.ProductID, models.RecordFieldCampaign, result.Campaign)

	detached := context.WithoutCancel(ctx)

	if h.deps.Archive != nil {
		actx, cancel := h.effectContext(ctx)
		err := h.deps.Archive.Save(actx, database.ArchivedCampaign{
			ProductID:        result.ProductID,
			CorrelationID:    result.CorrelationID,
			ProductName:      req.ProductInfo.Name,
			Status:           models.StatusCompleted,
			GenerationMethod: result.Method,
			Document:         result.Campaign,
		})
		cancel()
		if err != nil {
			log.Warn("failed to archive campaign", map[string]interface{}{"error": err.Error()})
		}
	}

	if h.deps.Visual != nil && h.deps.Visual.Enabled() {
		input := &visualqueue.Input{
			ProductID:     result.ProductID,
			CorrelationID: result.CorrelationID,
			Prompts:       append([]string(nil), result.Campaign.GeneratedAssets.ImagePrompts...),
		}
		h.background.Add(1)
		go func() {
			defer h.background.Done()
			vctx, cancel := context.WithTimeout(detached, h.config.SideEffectTimeout)
			defer cancel()
			if _, err := h.deps.Visual.Execute(vctx, input); err != nil {
				log.Warn("failed to enqueue visual generation", map[string]interface{}{"error": err.Error()})
			}
		}()
	}
}

// Wait blocks until background side effects have finished.
func (h *Handler) Wait() {
	h.background.Wait()
}

type effectsDeadlineKey struct{}

// effectContext bounds one record write, event or archive save. Each gets
// StoreTimeout, and all of a request's writes share one deadline of
// StoreTimeout past the outer budget.
func (h *Handler) effectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline := time.Now().Add(h.config.StoreTimeout)
	if shared, ok := ctx.Value(effectsDeadlineKey{}).(time.Time); ok && shared.Before(deadline) {
		deadline = shared
	}
	return context.WithDeadline(context.WithoutCancel(ctx), deadline)
}

func (h *Handler) emit(ctx context.Context, correlationID, productID, event, step string) {
	ectx, cancel := h.effectContext(ctx)
	defer cancel()
	h.deps.Events.Emit(ectx, ProgressEvent{
		CorrelationID: correlationID,
		ProductID:     productID,
		Event:         event,
		Step:          step,
		Timestamp:     time.Now().UTC(),
	})
}

// persist writes one record field. Store failures never affect the result.
func (h *Handler) persist(ctx context.Context, log Logger, productID, field string, value interface{}) {
	pctx, cancel := h.effectContext(ctx)
	defer cancel()
	if err := h.deps.Records.Put(pctx, productID, field, value); err != nil {
		log.Warn("failed to persist record field", map[string]interface{}{
			"field": field,
			"error": err.Error(),
		})
	}
}

func (h *Handler) setStatus(ctx context.Context, log Logger, productID string, status models.CampaignStatusValue) {
	sctx, cancel := h.effectContext(ctx)
	defer cancel()
	if err := h.deps.Records.SetStatus(sctx, productID, status); err != nil {
		log.Warn("failed to record status", map[string]interface{}{
			"status": string(status),
			"error":  err.Error(),
		})
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	req, result := validation.ValidateCampaignRequest([]byte(job.Variables))
	if !result.Valid {
		// Invalid variables become a BPMN error so the process can route it.
		apperrors.NewErrorHandler(h.logger).HandleJobError(context.Background(), client, job,
			apperrors.NewValidationFailedError(result.Summary()))
		return
	}

	out := h.GenerateCampaign(context.Background(), *req)
	h.completeJob(client, job, out.Response())
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *models.CampaignResponse) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
