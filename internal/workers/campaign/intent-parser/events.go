// internal/workers/campaign/intent-parser/events.go
package intentparser

import (
	"context"
	"encoding/json"
	"strings"

	"campaign-orchestrator/internal/common/database"
	"campaign-orchestrator/internal/common/metrics"
	"campaign-orchestrator/internal/models"
)

// EventSink receives progress events. Implementations must not block the
// pipeline for long and never report failures upwards.
type EventSink interface {
	Emit(ctx context.Context, event ProgressEvent)
}

type MultiSink []EventSink

func (m MultiSink) Emit(ctx context.Context, event ProgressEvent) {
	for _, sink := range m {
		sink.Emit(ctx, event)
	}
}

type LoggerSink struct {
	Logger Logger
}

func (s LoggerSink) Emit(_ context.Context, event ProgressEvent) {
	s.Logger.Info("campaign progress", map[string]interface{}{
		"correlationId": event.CorrelationID,
		"productId":     event.ProductID,
		"event":         event.Event,
		"step":          event.Step,
	})
}

// MetricsSink counts events by name without the reason suffix.
type MetricsSink struct{}

func (MetricsSink) Emit(_ context.Context, event ProgressEvent) {
	name := event.Event
	if i := strings.IndexByte(name, ':'); i > 0 {
		name = name[:i]
	}
	metrics.ProgressEvents.WithLabelValues(name).Inc()
}

// Publisher is satisfied by the SNS client wrapper.
type Publisher interface {
	PublishJSON(ctx context.Context, body string, attrs map[string]string) error
}

type SNSSink struct {
	Publisher Publisher
	Logger    Logger
}

func (s SNSSink) Emit(ctx context.Context, event ProgressEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.Publisher.PublishJSON(ctx, string(body), map[string]string{"event": event.Event}); err != nil {
		s.Logger.Warn("failed to publish progress event", map[string]interface{}{
			"correlationId": event.CorrelationID,
			"event":         event.Event,
			"error":         err.Error(),
		})
	}
}

var eventStatus = map[string]models.CampaignStatusValue{
	EventTier1Attempt: models.StatusTier1Attempt,
	EventTier2Started: models.StatusTier2Started,
}

// StatusSink mirrors tier transitions into the durable record so status
// polling can follow them.
type StatusSink struct {
	Records database.RecordStore
	Logger  Logger
}

func (s StatusSink) Emit(ctx context.Context, event ProgressEvent) {
	status, ok := eventStatus[event.Event]
	if !ok {
		return
	}
	if err := s.Records.SetStatus(ctx, event.ProductID, status); err != nil {
		s.Logger.Warn("failed to record status", map[string]interface{}{
			"correlationId": event.CorrelationID,
			"status":        string(status),
			"error":         err.Error(),
		})
	}
}
