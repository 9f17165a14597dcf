// internal/workers/campaign/campaign-agent/models.go
package campaignagent

import "campaign-orchestrator/internal/models"

type Input struct {
	CorrelationID string                 `json:"correlation_id"`
	Request       models.CampaignRequest `json:"request"`
}

type Output struct {
	Text string `json:"text"`
}
