// internal/workers/campaign/intent-parser/events_test.go
package intentparser

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"campaign-orchestrator/internal/common/metrics"
	"campaign-orchestrator/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	bodies []string
	attrs  []map[string]string
	err    error
}

func (p *fakePublisher) PublishJSON(ctx context.Context, body string, attrs map[string]string) error {
	p.bodies = append(p.bodies, body)
	p.attrs = append(p.attrs, attrs)
	return p.err
}

func event(name string) ProgressEvent {
	return ProgressEvent{
		CorrelationID: "corr-1",
		ProductID:     "prod-1",
		Event:         name,
		Timestamp:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMultiSink_FansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	MultiSink{a, b}.Emit(context.Background(), event(EventTier2Started))

	assert.Equal(t, []string{EventTier2Started}, a.names())
	assert.Equal(t, []string{EventTier2Started}, b.names())
}

func TestMetricsSink_StripsReason(t *testing.T) {
	before := testutil.ToFloat64(metrics.ProgressEvents.WithLabelValues(EventTier1Failed))

	MetricsSink{}.Emit(context.Background(), event(EventTier1Failed+":timeout"))

	after := testutil.ToFloat64(metrics.ProgressEvents.WithLabelValues(EventTier1Failed))
	assert.Equal(t, before+1, after)
}

func TestSNSSink(t *testing.T) {
	pub := &fakePublisher{}
	SNSSink{Publisher: pub, Logger: NewTestLogger(t)}.Emit(context.Background(), event(EventTier2Fallback))

	require.Len(t, pub.bodies, 1)
	var decoded ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(pub.bodies[0]), &decoded))
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.Equal(t, EventTier2Fallback, decoded.Event)
	assert.Equal(t, map[string]string{"event": EventTier2Fallback}, pub.attrs[0])
}

func TestSNSSink_PublishErrorSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errDown}
	assert.NotPanics(t, func() {
		SNSSink{Publisher: pub, Logger: NewTestLogger(t)}.Emit(context.Background(), event(EventTier1Attempt))
	})
}

func TestStatusSink(t *testing.T) {
	store := newMemoryStore()
	sink := StatusSink{Records: store, Logger: NewTestLogger(t)}

	sink.Emit(context.Background(), event(EventTier1Attempt))
	sink.Emit(context.Background(), event(EventTier1Failed+":timeout"))
	sink.Emit(context.Background(), event(EventTier2Started))

	assert.Equal(t, []models.CampaignStatusValue{models.StatusTier1Attempt, models.StatusTier2Started}, store.statuses["prod-1"])
}
