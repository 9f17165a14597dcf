// internal/workers/campaign/campaign-agent/handler.go
package campaignagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "campaign-orchestrator/internal/common/errors"
	httpclient "campaign-orchestrator/internal/common/http"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "campaign-agent"
)

var (
	ErrAgentNotConfigured = fmt.Errorf("AGENT_NOT_CONFIGURED: %w", apperrors.ErrCollaboratorUnavailable)
	ErrAgentUnavailable   = fmt.Errorf("AGENT_UNAVAILABLE: %w", apperrors.ErrCollaboratorUnavailable)
	ErrAgentTimeout       = fmt.Errorf("AGENT_TIMEOUT: %w", apperrors.ErrCollaboratorTimeout)
	ErrAgentEmptyResponse = fmt.Errorf("AGENT_EMPTY_RESPONSE: %w", apperrors.ErrMalformedOutput)
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config  *Config
	runtime AgentRuntime
	logger  Logger
}

// NewHandler builds the Tier-1 agent client. A nil runtime or a missing
// agent id leaves the handler permanently unavailable.
func NewHandler(config *Config, runtime AgentRuntime, log Logger) *Handler {
	return &Handler{
		config:  config,
		runtime: runtime,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Configured() bool {
	return h.runtime != nil && h.config.Configured()
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

// Execute makes exactly one agent invocation.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.Configured() {
		return nil, ErrAgentNotConfigured
	}

	text, err := h.runtime.Invoke(ctx, h.config.AgentID, h.config.AgentAliasID,
		sessionID(input.CorrelationID), BuildPrompt(input.Request))
	if err != nil {
		if httpclient.IsTimeout(ctx, err) {
			return nil, ErrAgentTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrAgentEmptyResponse
	}

	h.logger.Info("agent invocation completed", map[string]interface{}{
		"correlationId": input.CorrelationID,
		"responseChars": len(text),
	})
	return &Output{Text: text}, nil
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
