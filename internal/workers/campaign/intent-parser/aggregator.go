// internal/workers/campaign/intent-parser/aggregator.go
package intentparser

import "campaign-orchestrator/internal/models"

// Merge unions the successful step outputs into a working record. Fields no
// step produced stay nil. When two partials carry the same field the first
// one wins.
func Merge(correlationID, productID string, req models.CampaignRequest, partials ...Partial) *models.WorkingRecord {
	record := &models.WorkingRecord{
		CorrelationID: correlationID,
		ProductID:     productID,
		Request:       req,
	}
	for _, p := range partials {
		if record.ImageAnalysis == nil && p.ImageAnalysis != nil {
			record.ImageAnalysis = p.ImageAnalysis
		}
		if record.Enrichment == nil && p.Enrichment != nil {
			record.Enrichment = p.Enrichment
		}
		if record.Cultural == nil && p.Cultural != nil {
			record.Cultural = p.Cultural
		}
	}
	return record
}
