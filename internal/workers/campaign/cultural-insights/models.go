// internal/workers/campaign/cultural-insights/models.go
package culturalinsights

import "campaign-orchestrator/internal/models"

type Input struct {
	ProductName string   `json:"product_name"`
	Category    string   `json:"category"`
	Markets     []string `json:"markets"`
}

type Output struct {
	Cultural *models.CulturalInsights `json:"cultural_insights"`
}
