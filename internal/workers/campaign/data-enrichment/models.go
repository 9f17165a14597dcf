// internal/workers/campaign/data-enrichment/models.go
package dataenrichment

import "campaign-orchestrator/internal/models"

type Input struct {
	ProductName string   `json:"product_name"`
	Category    string   `json:"category"`
	ImageLabels []string `json:"image_labels"`
}

type Output struct {
	Enrichment *models.EnrichmentResult `json:"enrichment"`
}

type searchResponse struct {
	PageInfo struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
}
