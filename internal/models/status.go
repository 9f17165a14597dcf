// internal/models/status.go
package models

import "time"

type CampaignStatusValue string

const (
	StatusProcessing         CampaignStatusValue = "processing"
	StatusTier1Attempt       CampaignStatusValue = "tier1_attempt"
	StatusTier2Started       CampaignStatusValue = "tier2_started"
	StatusImageAnalyzed      CampaignStatusValue = "image_analyzed"
	StatusDataEnriched       CampaignStatusValue = "data_enriched"
	StatusCulturallyEnriched CampaignStatusValue = "culturally_enriched"
	StatusSynthesizing       CampaignStatusValue = "synthesizing"
	StatusCompleted          CampaignStatusValue = "completed"
	StatusFailed             CampaignStatusValue = "failed"
)

var statusProgress = map[CampaignStatusValue]int{
	StatusProcessing:         10,
	StatusTier1Attempt:       15,
	StatusTier2Started:       20,
	StatusImageAnalyzed:      40,
	StatusDataEnriched:       55,
	StatusCulturallyEnriched: 70,
	StatusSynthesizing:       85,
	StatusCompleted:          100,
	StatusFailed:             0,
}

// Progress returns the completion percentage for a status; unknown is 0.
func Progress(status CampaignStatusValue) int {
	return statusProgress[status]
}

// CampaignStatus is the GET /campaigns/{id}/status view.
type CampaignStatus struct {
	CampaignID       string              `json:"campaign_id"`
	CorrelationID    string              `json:"correlation_id,omitempty"`
	Status           CampaignStatusValue `json:"status"`
	Progress         int                 `json:"progress"`
	GenerationMethod GenerationMethod    `json:"generation_method,omitempty"`
	Fields           []string            `json:"fields"`
	UpdatedAt        string              `json:"updated_at,omitempty"`
}

// CampaignSummary is one row of the archived campaign listing.
type CampaignSummary struct {
	ProductID        string              `json:"product_id"`
	CorrelationID    string              `json:"correlation_id"`
	ProductName      string              `json:"product_name"`
	Status           CampaignStatusValue `json:"status"`
	Progress         int                 `json:"progress"`
	GenerationMethod GenerationMethod    `json:"generation_method"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Field names of the durable per-request record.
const (
	RecordFieldRequest       = "request"
	RecordFieldImageAnalysis = "image_analysis"
	RecordFieldEnrichment    = "enrichment"
	RecordFieldCultural      = "cultural_insights"
	RecordFieldCampaign      = "campaign"
	RecordFieldMethod        = "generation_method"
	RecordFieldCorrelationID = "correlation_id"
	RecordFieldStatus        = "status"
	RecordFieldProgress      = "progress"
	RecordFieldUpdatedAt     = "updated_at"
)

var fieldStatus = map[string]CampaignStatusValue{
	RecordFieldRequest:       StatusProcessing,
	RecordFieldImageAnalysis: StatusImageAnalyzed,
	RecordFieldEnrichment:    StatusDataEnriched,
	RecordFieldCultural:      StatusCulturallyEnriched,
	RecordFieldCampaign:      StatusCompleted,
}

// StatusForField returns the status reached once field has been written.
func StatusForField(field string) (CampaignStatusValue, bool) {
	s, ok := fieldStatus[field]
	return s, ok
}
