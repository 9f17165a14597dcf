// internal/workers/campaign/intent-parser/handler_test.go
package intentparser

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"campaign-orchestrator/internal/common/validation"
	"campaign-orchestrator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidCampaign(t *testing.T, doc *models.CampaignDocument) {
	t.Helper()
	require.NotNil(t, doc)
	result := validation.ValidateDocument(doc)
	require.True(t, result.Valid, "campaign must validate: %v", result.GetErrorMessages())
}

// ==========================
// Tier-1 Tests
// ==========================

func TestGenerateCampaign_Tier1Success(t *testing.T) {
	f := newFixture()
	f.agent.configured = true
	f.agent.text = "Here is your campaign:\n```json\n" + validCampaignJSON(t) + "\n```"

	h := f.handler(t)
	result := h.GenerateCampaign(context.Background(), ecoSmartRequest())
	h.Wait()

	assert.Equal(t, models.MethodTier1Agent, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.Empty(t, result.Warning)
	assert.Equal(t, int32(1), f.agent.calls)
	assert.Equal(t, [4]int32{0, 0, 0, 0}, f.tier2Calls(), "tier2 must not run after tier1 succeeds")
	assert.Equal(t, []string{EventTier1Attempt, EventTier1Succeeded}, f.events.names())
}

func TestGenerateCampaign_Tier1FailureReasons(t *testing.T) {
	valid := validCampaignJSON(t)
	var withoutInsights map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(valid), &withoutInsights))
	delete(withoutInsights, "market_insights")
	missing, _ := json.Marshal(withoutInsights)

	tests := []struct {
		name       string
		agent      *stubAgent
		wantReason string
		wantCalls  int32
	}{
		{"not configured", &stubAgent{}, "unavailable", 0},
		{"error", &stubAgent{configured: true, err: errDown}, "unavailable", 1},
		{"prose only", &stubAgent{configured: true, text: "I could not finish the campaign."}, "malformed_output", 1},
		{"truncated", &stubAgent{configured: true, text: valid[:len(valid)/2]}, "malformed_output", 1},
		{"missing market_insights", &stubAgent{configured: true, text: string(missing)}, "schema_validation_failed", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.agent = tt.agent
			f.synth.text = valid

			result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

			assert.Equal(t, models.MethodTier2Synthesis, result.Method)
			requireValidCampaign(t, result.Campaign)
			assert.Equal(t, tt.wantCalls, tt.agent.calls, "agent is called at most once")
			assert.Equal(t, []string{
				EventTier1Attempt,
				EventTier1Failed + ":" + tt.wantReason,
				EventTier2Started,
				EventTier2Succeeded,
			}, f.events.names())
		})
	}
}

func TestGenerateCampaign_Tier1DisabledSkipsAgent(t *testing.T) {
	f := newFixture()
	f.agent.configured = true
	f.config.Tier1Enabled = false
	f.synth.text = validCampaignJSON(t)

	result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.Equal(t, models.MethodTier2Synthesis, result.Method)
	assert.Equal(t, int32(0), f.agent.calls)
}

// ==========================
// Tier-2 Tests
// ==========================

func TestGenerateCampaign_EcoSmartTier2Synthesis(t *testing.T) {
	f := newFixture()
	f.synth.text = "Sure! " + validCampaignJSON(t) + " Let me know if you need changes."

	h := f.handler(t)
	result := h.GenerateCampaign(context.Background(), ecoSmartRequest())
	h.Wait()

	assert.Equal(t, models.MethodTier2Synthesis, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.Equal(t, [4]int32{1, 1, 1, 1}, f.tier2Calls(), "each step exactly once")
	assert.Equal(t, []string{"Bottle", "Water"}, f.enricher.labels, "enrichment sees image labels")

	rec := f.synth.record
	require.NotNil(t, rec)
	assert.Equal(t, result.CorrelationID, rec.CorrelationID)
	assert.Equal(t, result.ProductID, rec.ProductID)
	assert.Equal(t, []string{"image_analysis", "enrichment", "cultural_insights"}, rec.Populated())

	assert.Equal(t, []string{
		models.RecordFieldRequest,
		models.RecordFieldCorrelationID,
		models.RecordFieldImageAnalysis,
		models.RecordFieldEnrichment,
		models.RecordFieldCultural,
		models.RecordFieldMethod,
		models.RecordFieldCampaign,
	}, f.store.fields[result.ProductID])
	assert.Equal(t, []models.CampaignStatusValue{models.StatusSynthesizing}, f.store.statuses[result.ProductID])

	require.Len(t, f.archive.saved, 1)
	assert.Equal(t, models.MethodTier2Synthesis, f.archive.saved[0].GenerationMethod)
	assert.Equal(t, "EcoSmart Bottle", f.archive.saved[0].ProductName)
	assert.Equal(t, int32(1), f.visual.calls)
	assert.Equal(t, result.Campaign.GeneratedAssets.ImagePrompts, f.visual.prompts)
}

func TestGenerateCampaign_ParallelEnrichment(t *testing.T) {
	f := newFixture()
	f.config.ParallelEnrichment = true
	f.synth.text = validCampaignJSON(t)

	result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.Equal(t, models.MethodTier2Synthesis, result.Method)
	assert.Equal(t, [4]int32{1, 1, 1, 1}, f.tier2Calls())
	assert.Equal(t, []string{"Bottle", "Water"}, f.enricher.labels, "image analysis still precedes enrichment")
	assert.Equal(t, []string{"image_analysis", "enrichment", "cultural_insights"}, f.synth.record.Populated())
}

func TestGenerateCampaign_NoImageSkipsImageAnalysis(t *testing.T) {
	f := newFixture()
	f.synth.text = validCampaignJSON(t)
	req := ecoSmartRequest()
	req.S3Info = models.S3Info{}

	result := f.handler(t).GenerateCampaign(context.Background(), req)

	assert.Equal(t, models.MethodTier2Synthesis, result.Method)
	assert.Equal(t, [4]int32{0, 1, 1, 1}, f.tier2Calls())
	assert.Empty(t, f.enricher.labels)
	assert.Nil(t, f.synth.record.ImageAnalysis)
}

func TestGenerateCampaign_SynthesisSchemaFailureFallsBack(t *testing.T) {
	f := newFixture()
	f.synth.text = `{"product": {"description": "too short"}}`

	result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, int32(1), f.synth.calls, "synthesis is not retried")
	assert.Equal(t, EventTier2Fallback, f.events.names()[3])
	assert.Equal(t, "Hydration hacks", result.Campaign.RelatedYouTubeVideos[0].Title, "fallback uses enrichment")
}

func TestGenerateCampaign_AllStepsFail(t *testing.T) {
	f := newFixture()
	f.images.err = errDown
	f.enricher.err = errDown
	f.cultural.err = errDown
	f.synth.err = errDown

	result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.Equal(t, [4]int32{1, 1, 1, 1}, f.tier2Calls())
	assert.Empty(t, f.synth.record.Populated(), "synthesis still sees the empty record")

	doc := result.Campaign
	assert.GreaterOrEqual(t, len(doc.ContentIdeas), 2)
	assert.GreaterOrEqual(t, len(doc.Campaigns), 1)
	assert.GreaterOrEqual(t, len(doc.RelatedYouTubeVideos), 2)
	assert.True(t, strings.Contains(doc.Product.Description, "EcoSmart Bottle"))
}

func TestGenerateCampaign_SingleStepFailure(t *testing.T) {
	all := []string{"image_analysis", "enrichment", "cultural_insights"}

	tests := []struct {
		name   string
		fail   func(f *fixture)
		failed string
	}{
		{"image analysis", func(f *fixture) { f.images.err = errDown }, "image_analysis"},
		{"enrichment", func(f *fixture) { f.enricher.err = errDown }, "enrichment"},
		{"cultural insights", func(f *fixture) { f.cultural.err = errDown }, "cultural_insights"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.agent.configured = true
			f.agent.err = errDown
			f.synth.text = validCampaignJSON(t)
			tt.fail(f)

			result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

			assert.Equal(t, models.MethodTier2Synthesis, result.Method)
			requireValidCampaign(t, result.Campaign)
			assert.Equal(t, int32(1), f.agent.calls)
			assert.Equal(t, [4]int32{1, 1, 1, 1}, f.tier2Calls(), "a failed step does not stop or repeat the others")

			var want []string
			for _, field := range all {
				if field != tt.failed {
					want = append(want, field)
				}
			}
			require.NotNil(t, f.synth.record)
			assert.Equal(t, want, f.synth.record.Populated())
		})
	}
}

func TestGenerateCampaign_EverythingFailsUsesDefaults(t *testing.T) {
	f := newFixture()
	f.agent.configured = true
	f.agent.err = errDown
	f.images.err = errDown
	f.enricher.err = errDown
	f.cultural.err = errDown
	f.synth.err = errDown

	req := ecoSmartRequest()
	req.CampaignObjectives.PlatformPreferences = nil
	req.CampaignObjectives.CampaignDuration = "30 days"

	result := f.handler(t).GenerateCampaign(context.Background(), req)

	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, int32(1), f.agent.calls)
	assert.Equal(t, [4]int32{1, 1, 1, 1}, f.tier2Calls())

	doc := result.Campaign
	require.NotEmpty(t, doc.Campaigns)
	assert.Equal(t, "30 days", doc.Campaigns[0].Duration)
	require.NotEmpty(t, doc.ContentIdeas)
	for _, idea := range doc.ContentIdeas {
		assert.Contains(t, []string{"Instagram", "TikTok", "YouTube"}, idea.Platform)
	}
	assert.Equal(t, []string{
		EventTier1Attempt,
		EventTier1Failed + ":unavailable",
		EventTier2Started,
		EventTier2Fallback,
	}, f.events.names())
}

func TestGenerateCampaign_StoreFailuresIgnored(t *testing.T) {
	f := newFixture()
	f.store.err = errDown
	f.synth.text = validCampaignJSON(t)

	result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.Equal(t, models.MethodTier2Synthesis, result.Method)
	requireValidCampaign(t, result.Campaign)
}

func TestGenerateCampaign_OptionalDependencies(t *testing.T) {
	h := NewHandler(LoadConfig(), Dependencies{}, NewTestLogger(t))

	result := h.GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
}

// ==========================
// Deadline Tests
// ==========================

func TestGenerateCampaign_SynthesisHangsWithinBudget(t *testing.T) {
	f := newFixture()
	shortBudget(f, 200*time.Millisecond)
	f.synth.hang = true

	start := time.Now()
	result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())
	elapsed := time.Since(start)

	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, [4]int32{1, 1, 1, 1}, f.tier2Calls())
}

func TestGenerateCampaign_AgentConsumesWholeBudget(t *testing.T) {
	f := newFixture()
	shortBudget(f, 100*time.Millisecond)
	f.agent.configured = true
	f.agent.hang = true

	start := time.Now()
	result := f.handler(t).GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.Equal(t, EventTier1Failed+":deadline_exceeded", f.events.names()[1])
	assert.Equal(t, [4]int32{0, 0, 0, 0}, f.tier2Calls(), "expired steps are skipped, not called")
}

func TestGenerateCampaign_BlockedStoreBoundedPastBudget(t *testing.T) {
	f := newFixture()
	f.config.OuterBudget = 300 * time.Millisecond
	f.agent.configured = true
	f.agent.hang = true

	store := &blockingStore{}
	h := NewHandler(f.config, Dependencies{
		Agent:       f.agent,
		Images:      f.images,
		Enricher:    f.enricher,
		Cultural:    f.cultural,
		Synthesizer: f.synth,
		Archive:     &blockingArchive{},
		Records:     store,
		Events:      MultiSink{f.events, StatusSink{Records: store, Logger: NewTestLogger(t)}},
	}, NewTestLogger(t))

	start := time.Now()
	result := h.GenerateCampaign(context.Background(), ecoSmartRequest())
	elapsed := time.Since(start)

	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
	assert.Less(t, elapsed, f.config.OuterBudget+f.config.StoreTimeout+time.Second,
		"every write after the budget shares one StoreTimeout")
	assert.Greater(t, atomic.LoadInt32(&store.calls), int32(5))
}

func TestGenerateCampaign_CancelledCaller(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.handler(t).GenerateCampaign(ctx, ecoSmartRequest())

	assert.Equal(t, models.MethodTier2Fallback, result.Method)
	requireValidCampaign(t, result.Campaign)
}

// ==========================
// Identity Tests
// ==========================

func TestGenerateCampaign_DistinctCorrelationIDs(t *testing.T) {
	f := newFixture()
	h := f.handler(t)

	a := h.GenerateCampaign(context.Background(), ecoSmartRequest())
	b := h.GenerateCampaign(context.Background(), ecoSmartRequest())

	assert.NotEmpty(t, a.CorrelationID)
	assert.NotEqual(t, a.CorrelationID, b.CorrelationID)
	assert.NotEqual(t, a.ProductID, b.ProductID)
	assert.NotEqual(t, a.CorrelationID, a.ProductID)
}

func TestResult_Response(t *testing.T) {
	doc := &models.CampaignDocument{}
	r := &Result{CorrelationID: "c", ProductID: "p", Method: models.MethodTier2Fallback, Campaign: doc, Warning: "w"}

	resp := r.Response()
	assert.True(t, resp.Success)
	assert.Equal(t, "c", resp.CorrelationID)
	assert.Equal(t, "p", resp.ProductID)
	assert.Equal(t, models.MethodTier2Fallback, resp.GenerationMethod)
	assert.Same(t, doc, resp.Campaign)
	assert.Equal(t, "w", resp.Warning)
}
