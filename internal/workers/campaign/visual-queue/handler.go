// internal/workers/campaign/visual-queue/handler.go
package visualqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "campaign-orchestrator/internal/common/errors"
	httpclient "campaign-orchestrator/internal/common/http"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "visual-queue"
)

var (
	ErrQueueDisabled  = errors.New("VISUAL_QUEUE_DISABLED")
	ErrNoPrompts      = errors.New("NO_IMAGE_PROMPTS")
	ErrEnqueueFailed  = fmt.Errorf("VISUAL_ENQUEUE_FAILED: %w", apperrors.ErrCollaboratorUnavailable)
	ErrEnqueueTimeout = fmt.Errorf("VISUAL_ENQUEUE_TIMEOUT: %w", apperrors.ErrCollaboratorTimeout)
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Sender is satisfied by the SQS client wrapper.
type Sender interface {
	SendJSON(ctx context.Context, body string) (string, error)
}

type Handler struct {
	config *Config
	sender Sender
	logger Logger
	now    func() time.Time
}

func NewHandler(config *Config, sender Sender, log Logger) *Handler {
	return &Handler{
		config: config,
		sender: sender,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		now: time.Now,
	}
}

func (h *Handler) Enabled() bool {
	return h.config.Enabled && h.sender != nil
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

	output, err := h.Execute(context.Background(), &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}
	h.completeJob(client, job, output)
}

// Execute sends one visual generation job carrying every non-blank prompt.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.Enabled() {
		return nil, ErrQueueDisabled
	}

	prompts := make([]string, 0, len(input.Prompts))
	for _, p := range input.Prompts {
		if p = strings.TrimSpace(p); p != "" && len(prompts) < h.config.MaxPrompts {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		return nil, ErrNoPrompts
	}

	body, err := json.Marshal(VisualJob{
		ProductID:     input.ProductID,
		CorrelationID: input.CorrelationID,
		Prompts:       prompts,
		RequestedAt:   h.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	messageID, err := h.sender.SendJSON(ctx, string(body))
	if err != nil {
		if httpclient.IsTimeout(ctx, err) {
			return nil, ErrEnqueueTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrEnqueueFailed, err)
	}

	h.logger.Info("visual generation job enqueued", map[string]interface{}{
		"correlationId": input.CorrelationID,
		"productId":     input.ProductID,
		"messageId":     messageID,
		"prompts":       len(prompts),
	})
	return &Output{MessageID: messageID, Prompts: len(prompts)}, nil
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
