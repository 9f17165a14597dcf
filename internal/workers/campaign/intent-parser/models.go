// internal/workers/campaign/intent-parser/models.go
package intentparser

import (
	"time"

	"campaign-orchestrator/internal/models"
)

const fallbackWarning = "AI synthesis was unavailable; the campaign was assembled from templates and the data gathered so far"

// Result is what GenerateCampaign hands back to the boundary. Campaign is
// never nil.
type Result struct {
	CorrelationID string
	ProductID     string
	Method        models.GenerationMethod
	Campaign      *models.CampaignDocument
	Warning       string
}

func (r *Result) Response() *models.CampaignResponse {
	return &models.CampaignResponse{
		Success:          true,
		CorrelationID:    r.CorrelationID,
		GenerationMethod: r.Method,
		ProductID:        r.ProductID,
		Campaign:         r.Campaign,
		Warning:          r.Warning,
	}
}

// Event names emitted while a request moves through the tiers.
const (
	EventTier1Attempt   = "tier1_attempt"
	EventTier1Succeeded = "tier1_succeeded"
	EventTier1Failed    = "tier1_failed"
	EventTier2Started   = "tier2_started"
	EventTier2Succeeded = "tier2_succeeded"
	EventTier2Fallback  = "tier2_fallback"
)

type ProgressEvent struct {
	CorrelationID string    `json:"correlation_id"`
	ProductID     string    `json:"product_id"`
	Event         string    `json:"event"`
	Step          string    `json:"step,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Partial is the output of one Tier-2 step. Only the field the step owns is
// set.
type Partial struct {
	ImageAnalysis *models.ImageAnalysisResult
	Enrichment    *models.EnrichmentResult
	Cultural      *models.CulturalInsights
}
