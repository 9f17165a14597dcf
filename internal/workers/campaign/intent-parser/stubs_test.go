// internal/workers/campaign/intent-parser/stubs_test.go
package intentparser

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campaign-orchestrator/internal/common/database"
	"campaign-orchestrator/internal/models"
	campaignagent "campaign-orchestrator/internal/workers/campaign/campaign-agent"
	campaignsynthesis "campaign-orchestrator/internal/workers/campaign/campaign-synthesis"
	culturalinsights "campaign-orchestrator/internal/workers/campaign/cultural-insights"
	dataenrichment "campaign-orchestrator/internal/workers/campaign/data-enrichment"
	imageanalysis "campaign-orchestrator/internal/workers/campaign/image-analysis"
	visualqueue "campaign-orchestrator/internal/workers/campaign/visual-queue"

	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

// ==========================
// Counting Stubs
// ==========================

// hang blocks until ctx is done and returns its error.
func hang(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type stubAgent struct {
	calls      int32
	configured bool
	text       string
	err        error
	hang       bool
}

func (s *stubAgent) Configured() bool { return s.configured }

func (s *stubAgent) Execute(ctx context.Context, in *campaignagent.Input) (*campaignagent.Output, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.hang {
		return nil, hang(ctx)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &campaignagent.Output{Text: s.text}, nil
}

type stubImages struct {
	calls int32
	err   error
}

func (s *stubImages) Execute(ctx context.Context, in *imageanalysis.Input) (*imageanalysis.Output, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &imageanalysis.Output{ImageAnalysis: &models.ImageAnalysisResult{
		Labels:               []models.ImageLabel{{Name: "Bottle", Confidence: 98}, {Name: "Water", Confidence: 88}},
		HighConfidenceLabels: []string{"Bottle", "Water"},
		S3Key:                in.S3Info.Key,
	}}, nil
}

type stubEnricher struct {
	calls  int32
	err    error
	labels []string
}

func (s *stubEnricher) Execute(ctx context.Context, in *dataenrichment.Input) (*dataenrichment.Output, error) {
	atomic.AddInt32(&s.calls, 1)
	s.labels = in.ImageLabels
	if s.err != nil {
		return nil, s.err
	}
	return &dataenrichment.Output{Enrichment: &models.EnrichmentResult{
		SearchQuery: in.ProductName,
		Videos: []models.TrendVideo{
			{VideoID: "abcdefghijk", Title: "Hydration hacks", URL: "https://www.youtube.com/watch?v=abcdefghijk", Views: 10},
			{VideoID: "ABCDEFGHIJK", Title: "Bottle review", URL: "https://www.youtube.com/watch?v=ABCDEFGHIJK", Views: 20},
		},
	}}, nil
}

type stubCultural struct {
	calls int32
	err   error
}

func (s *stubCultural) Execute(ctx context.Context, in *culturalinsights.Input) (*culturalinsights.Output, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &culturalinsights.Output{Cultural: culturalinsights.BuiltinInsights(in.Category, in.Markets)}, nil
}

type stubSynth struct {
	calls  int32
	text   string
	err    error
	hang   bool
	record *models.WorkingRecord
}

func (s *stubSynth) Execute(ctx context.Context, in *campaignsynthesis.Input) (*campaignsynthesis.Output, error) {
	atomic.AddInt32(&s.calls, 1)
	s.record = in.Record
	if s.hang {
		return nil, hang(ctx)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &campaignsynthesis.Output{Text: s.text}, nil
}

type stubVisual struct {
	calls   int32
	prompts []string
}

func (s *stubVisual) Enabled() bool { return true }

func (s *stubVisual) Execute(ctx context.Context, in *visualqueue.Input) (*visualqueue.Output, error) {
	atomic.AddInt32(&s.calls, 1)
	s.prompts = in.Prompts
	return &visualqueue.Output{MessageID: "m-1", Prompts: len(in.Prompts)}, nil
}

type stubArchive struct {
	mu    sync.Mutex
	saved []database.ArchivedCampaign
	err   error
}

func (s *stubArchive) Save(ctx context.Context, c database.ArchivedCampaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, c)
	return s.err
}

// memoryStore records writes in order.
type memoryStore struct {
	mu       sync.Mutex
	fields   map[string][]string
	statuses map[string][]models.CampaignStatusValue
	err      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		fields:   make(map[string][]string),
		statuses: make(map[string][]models.CampaignStatusValue),
	}
}

func (m *memoryStore) Put(ctx context.Context, key, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.fields[key] = append(m.fields[key], field)
	return nil
}

func (m *memoryStore) SetStatus(ctx context.Context, key string, status models.CampaignStatusValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.statuses[key] = append(m.statuses[key], status)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (map[string]string, error) {
	return nil, database.ErrRecordNotFound
}

// blockingStore never answers before ctx is done.
type blockingStore struct {
	calls int32
}

func (b *blockingStore) Put(ctx context.Context, key, field string, value interface{}) error {
	atomic.AddInt32(&b.calls, 1)
	return hang(ctx)
}

func (b *blockingStore) SetStatus(ctx context.Context, key string, status models.CampaignStatusValue) error {
	atomic.AddInt32(&b.calls, 1)
	return hang(ctx)
}

func (b *blockingStore) Get(ctx context.Context, key string) (map[string]string, error) {
	return nil, hang(ctx)
}

type blockingArchive struct{}

func (blockingArchive) Save(ctx context.Context, c database.ArchivedCampaign) error {
	return hang(ctx)
}

type recordingSink struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *recordingSink) Emit(ctx context.Context, event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}

// ==========================
// Fixtures
// ==========================

var errDown = errors.New("connection refused")

func validCampaignJSON(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile("../../../common/validation/testdata/valid_campaign.json")
	require.NoError(t, err)
	return string(raw)
}

func ecoSmartRequest() models.CampaignRequest {
	price := 29.99
	return models.CampaignRequest{
		ProductInfo: models.ProductInfo{
			Name:        "EcoSmart Bottle",
			Description: "Insulated smart bottle that tracks hydration",
			Category:    "Health",
			Price:       &price,
		},
		S3Info:        models.S3Info{Bucket: "product-images-bucket-v2", Key: "uploads/u-1/bottle.jpg"},
		TargetMarkets: models.Markets{"North America", "Europe"},
		CampaignObjectives: models.CampaignObjectives{
			PrimaryGoal:         "awareness",
			CampaignDuration:    "30 days",
			PlatformPreferences: []string{"Instagram", "TikTok"},
		},
	}
}

type fixture struct {
	agent    *stubAgent
	images   *stubImages
	enricher *stubEnricher
	cultural *stubCultural
	synth    *stubSynth
	visual   *stubVisual
	archive  *stubArchive
	store    *memoryStore
	events   *recordingSink
	config   *Config
}

func newFixture() *fixture {
	return &fixture{
		agent:    &stubAgent{},
		images:   &stubImages{},
		enricher: &stubEnricher{},
		cultural: &stubCultural{},
		synth:    &stubSynth{},
		visual:   &stubVisual{},
		archive:  &stubArchive{},
		store:    newMemoryStore(),
		events:   &recordingSink{},
		config:   LoadConfig(),
	}
}

func (f *fixture) handler(t *testing.T) *Handler {
	return NewHandler(f.config, Dependencies{
		Agent:       f.agent,
		Images:      f.images,
		Enricher:    f.enricher,
		Cultural:    f.cultural,
		Synthesizer: f.synth,
		Visual:      f.visual,
		Archive:     f.archive,
		Records:     f.store,
		Events:      f.events,
	}, NewTestLogger(t))
}

func (f *fixture) tier2Calls() [4]int32 {
	return [4]int32{
		atomic.LoadInt32(&f.images.calls),
		atomic.LoadInt32(&f.enricher.calls),
		atomic.LoadInt32(&f.cultural.calls),
		atomic.LoadInt32(&f.synth.calls),
	}
}

func shortBudget(f *fixture, d time.Duration) {
	f.config.OuterBudget = d
	f.config.StoreTimeout = 50 * time.Millisecond
}
