// internal/workers/campaign/campaign-synthesis/handler.go
package campaignsynthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "campaign-orchestrator/internal/common/errors"
	httpclient "campaign-orchestrator/internal/common/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "campaign-synthesis"
)

var (
	ErrSynthesisTimeout   = fmt.Errorf("LLM_TIMEOUT: %w", apperrors.ErrCollaboratorTimeout)
	ErrSynthesisFailed    = fmt.Errorf("LLM_SYNTHESIS_FAILED: %w", apperrors.ErrCollaboratorUnavailable)
	ErrSynthesisMalformed = fmt.Errorf("LLM_MALFORMED_RESPONSE: %w", apperrors.ErrMalformedOutput)
	ErrMissingRecord      = errors.New("MISSING_RECORD")
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// BedrockAPI is the subset of the Bedrock runtime client used here.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Handler struct {
	config  *Config
	client  *httpclient.Client
	bedrock BedrockAPI
	logger  Logger
}

// NewHandler builds the synthesizer. bedrock may be nil when the HTTP
// provider is configured.
func NewHandler(config *Config, bedrock BedrockAPI, log Logger) *Handler {
	return &Handler{
		config:  config,
		client:  httpclient.NewClient(0),
		bedrock: bedrock,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"provider": config.Provider,
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

// Execute makes exactly one generative call and returns the raw text.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Record == nil {
		return nil, ErrMissingRecord
	}
	prompt := BuildPrompt(input.Record)

	var (
		text string
		err  error
	)
	if h.config.Provider == ProviderBedrock {
		text, err = h.invokeBedrock(ctx, prompt)
	} else {
		text, err = h.invokeHTTP(ctx, prompt, input)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrSynthesisMalformed)
	}

	h.logger.Info("campaign synthesis completed", map[string]interface{}{
		"promptChars":   len(prompt),
		"responseChars": len(text),
		"fields":        input.Record.Populated(),
	})
	return &Output{Text: text}, nil
}

func (h *Handler) invokeHTTP(ctx context.Context, prompt string, input *Input) (string, error) {
	body := map[string]interface{}{
		"prompt": prompt,
		"context": map[string]interface{}{
			"correlation_id": input.Record.CorrelationID,
			"product_id":     input.Record.ProductID,
		},
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
	}
	headers := map[string]string{}
	if h.config.GenAIAPIKey != "" {
		headers["Authorization"] = "Bearer " + h.config.GenAIAPIKey
	}

	var resp struct {
		Text string `json:"text"`
	}
	url := strings.TrimRight(h.config.GenAIBaseURL, "/") + "/api/ai/generate"
	if err := h.client.DoJSON(ctx, "POST", url, headers, body, &resp); err != nil {
		return "", h.mapError(ctx, err)
	}
	return resp.Text, nil
}

func (h *Handler) invokeBedrock(ctx context.Context, prompt string) (string, error) {
	if h.bedrock == nil {
		return "", fmt.Errorf("%w: bedrock client not configured", ErrSynthesisFailed)
	}

	payload, err := json.Marshal(novaRequest{
		Messages: []novaMessage{{Role: "user", Content: []novaContent{{Text: prompt}}}},
		InferenceConfig: novaInferenceConfig{
			MaxTokens:   h.config.MaxTokens,
			Temperature: h.config.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	out, err := h.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(h.config.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", h.mapError(ctx, err)
	}

	var resp novaResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesisMalformed, err)
	}
	var sb strings.Builder
	for _, c := range resp.Output.Message.Content {
		sb.WriteString(c.Text)
	}
	return sb.String(), nil
}

func (h *Handler) mapError(ctx context.Context, err error) error {
	switch {
	case httpclient.IsTimeout(ctx, err):
		return ErrSynthesisTimeout
	case errors.Is(err, httpclient.ErrDecode):
		return fmt.Errorf("%w: %v", ErrSynthesisMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
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
