// internal/workers/campaign/image-analysis/handler.go
package imageanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "campaign-orchestrator/internal/common/errors"
	"campaign-orchestrator/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "image-analysis"

	highConfidenceThreshold = 80.0
	anonymousUser           = "anonymous"
)

var (
	ErrNoImage               = errors.New("NO_IMAGE")
	ErrImageAnalysisTimeout  = fmt.Errorf("IMAGE_ANALYSIS_TIMEOUT: %w", apperrors.ErrCollaboratorTimeout)
	ErrImageAnalysisFailed   = fmt.Errorf("IMAGE_ANALYSIS_FAILED: %w", apperrors.ErrCollaboratorUnavailable)
	ErrImageAnalysisNoLabels = fmt.Errorf("IMAGE_ANALYSIS_NO_LABELS: %w", apperrors.ErrMalformedOutput)
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// RekognitionAPI is the subset of the Rekognition client used here.
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type Handler struct {
	config *Config
	client RekognitionAPI
	logger Logger
	now    func() time.Time
}

func NewHandler(config *Config, client RekognitionAPI, log Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		now: time.Now,
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

// Execute runs one DetectLabels call. It is never retried.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.S3Info.HasImage() {
		return nil, ErrNoImage
	}
	bucket := input.S3Info.Bucket
	if bucket == "" {
		bucket = h.config.DefaultBucket
	}

	resp, err := h.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(input.S3Info.Key),
			},
		},
		MaxLabels:     aws.Int32(h.config.MaxLabels),
		MinConfidence: aws.Float32(h.config.MinConfidence),
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrImageAnalysisTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrImageAnalysisFailed, err)
	}

	labels := processLabels(resp.Labels)
	if len(labels) == 0 {
		return nil, ErrImageAnalysisNoLabels
	}

	result := &models.ImageAnalysisResult{
		Labels:               labels,
		HighConfidenceLabels: highConfidence(labels),
		UserID:               userIDFromKey(input.S3Info.Key),
		S3Key:                input.S3Info.Key,
		PublicURL:            PublicURL(bucket, input.S3Info.Key),
		AnalyzedAt:           h.now().UTC(),
	}

	h.logger.Info("image analysis completed", map[string]interface{}{
		"labelCount":          len(labels),
		"highConfidenceCount": len(result.HighConfidenceLabels),
	})

	return &Output{ImageAnalysis: result}, nil
}

// processLabels drops unnamed labels and sorts by descending confidence.
func processLabels(raw []types.Label) []models.ImageLabel {
	labels := make([]models.ImageLabel, 0, len(raw))
	for _, l := range raw {
		name := strings.TrimSpace(aws.ToString(l.Name))
		if name == "" {
			continue
		}
		label := models.ImageLabel{
			Name:       name,
			Confidence: float64(aws.ToFloat32(l.Confidence)),
			Instances:  len(l.Instances),
		}
		for _, c := range l.Categories {
			if n := aws.ToString(c.Name); n != "" {
				label.Categories = append(label.Categories, n)
			}
		}
		labels = append(labels, label)
	}

	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].Confidence > labels[j].Confidence
	})
	return labels
}

func highConfidence(labels []models.ImageLabel) []string {
	out := []string{}
	for _, l := range labels {
		if l.Confidence >= highConfidenceThreshold {
			out = append(out, l.Name)
		}
	}
	return out
}

// userIDFromKey reads the user segment of uploads/{user}/{file}.
func userIDFromKey(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) >= 3 && parts[0] == "uploads" && parts[1] != "" {
		return parts[1]
	}
	return anonymousUser
}

// PublicURL is the virtual-hosted S3 URL of an uploaded image.
func PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
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
