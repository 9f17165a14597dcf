// internal/workers/campaign/cultural-insights/handler.go
package culturalinsights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "campaign-orchestrator/internal/common/errors"
	httpclient "campaign-orchestrator/internal/common/http"
	"campaign-orchestrator/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "cultural-insights"
)

var (
	ErrCulturalTimeout   = fmt.Errorf("CULTURAL_INSIGHTS_TIMEOUT: %w", apperrors.ErrCollaboratorTimeout)
	ErrCulturalFailed    = fmt.Errorf("CULTURAL_INSIGHTS_FAILED: %w", apperrors.ErrCollaboratorUnavailable)
	ErrCulturalMalformed = fmt.Errorf("CULTURAL_INSIGHTS_MALFORMED: %w", apperrors.ErrMalformedOutput)
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *httpclient.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"mode":     config.Mode,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}
	h.completeJob(client, job, output)
}

// Execute resolves insights for every requested market. It is never retried.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	markets := input.Markets
	if len(markets) == 0 {
		markets = []string{globalMarket}
	}

	var (
		insights *models.CulturalInsights
		err      error
	)
	if h.config.Mode == ModeHTTP {
		insights, err = h.fetch(ctx, input, markets)
	} else {
		if ctx.Err() != nil {
			return nil, ErrCulturalTimeout
		}
		insights = BuiltinInsights(input.Category, markets)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("cultural insights completed", map[string]interface{}{
		"marketCount": len(insights.Markets),
	})
	return &Output{Cultural: insights}, nil
}

func (h *Handler) fetch(ctx context.Context, input *Input, markets []string) (*models.CulturalInsights, error) {
	body := map[string]interface{}{
		"product_name": input.ProductName,
		"category":     input.Category,
		"markets":      markets,
	}
	headers := map[string]string{}
	if h.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + h.config.APIKey
	}

	var resp models.CulturalInsights
	url := strings.TrimRight(h.config.BaseURL, "/") + "/insights"
	if err := h.client.DoJSON(ctx, "POST", url, headers, body, &resp); err != nil {
		switch {
		case httpclient.IsTimeout(ctx, err):
			return nil, ErrCulturalTimeout
		case errors.Is(err, httpclient.ErrDecode):
			return nil, fmt.Errorf("%w: %v", ErrCulturalMalformed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrCulturalFailed, err)
		}
	}
	if len(resp.Markets) == 0 {
		return nil, fmt.Errorf("%w: no market insights in response", ErrCulturalMalformed)
	}
	return &resp, nil
}

// MarketKey lowercases a market name and replaces spaces with underscores.
func MarketKey(market string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(market)), " ", "_")
}

// BuiltinInsights answers from the static market table. Unknown markets get
// the Global profile under their own key.
func BuiltinInsights(category string, markets []string) *models.CulturalInsights {
	out := &models.CulturalInsights{
		Markets:          make(map[string]models.MarketProfile, len(markets)),
		Guidelines:       guidelinesFor(category),
		SensitivityNotes: append([]string(nil), sensitivityNotes...),
	}
	for _, m := range markets {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		out.Markets[MarketKey(m)] = profileFor(m)
	}
	if len(out.Markets) == 0 {
		out.Markets[MarketKey(globalMarket)] = profileFor(globalMarket)
	}
	return out
}

func profileFor(market string) models.MarketProfile {
	lookup := strings.ReplaceAll(strings.ToLower(market), "_", " ")
	p, ok := marketProfiles[lookup]
	if !ok {
		p = marketProfiles["global"]
	}
	p.Market = market
	p.PreferredPlatforms = append([]string(nil), p.PreferredPlatforms...)
	p.Considerations = append([]string(nil), p.Considerations...)
	p.BestPostingTimes = append([]string(nil), p.BestPostingTimes...)
	return p
}

func guidelinesFor(category string) models.CommunicationGuidelines {
	if g, ok := categoryGuidelines[strings.ToLower(strings.TrimSpace(category))]; ok {
		return g
	}
	return categoryGuidelines[defaultCategory]
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": string(apperrors.Classify(err)),
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(err.Error()).
		Send(context.Background())
}
