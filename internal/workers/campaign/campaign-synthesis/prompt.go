// internal/workers/campaign/campaign-synthesis/prompt.go
package campaignsynthesis

import (
	"encoding/json"
	"fmt"
	"strings"

	"campaign-orchestrator/internal/common/validation"
	"campaign-orchestrator/internal/models"
)

const maxPromptVideos = 5

// BuildPrompt renders every populated field of the record into the synthesis
// prompt. Absent fields are omitted.
func BuildPrompt(record *models.WorkingRecord) string {
	req := record.Request
	var parts []string

	parts = append(parts, "You are a viral marketing campaign expert. Based on the market analysis data below, synthesize a complete social media campaign.")
	parts = append(parts, fmt.Sprintf("\nProduct: %s", req.ProductInfo.Name))
	if req.ProductInfo.Description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", req.ProductInfo.Description))
	}
	if req.ProductInfo.Category != "" {
		parts = append(parts, fmt.Sprintf("Category: %s", req.ProductInfo.Category))
	}
	if req.ProductInfo.Price != nil {
		parts = append(parts, fmt.Sprintf("Price: %.2f", *req.ProductInfo.Price))
	}
	if len(req.ProductInfo.Features) > 0 {
		parts = append(parts, fmt.Sprintf("Features: %s", strings.Join(req.ProductInfo.Features, ", ")))
	}
	if len(req.TargetMarkets) > 0 {
		parts = append(parts, fmt.Sprintf("Target markets: %s", strings.Join(req.TargetMarkets, ", ")))
	}

	if ia := record.ImageAnalysis; ia != nil {
		parts = append(parts, "\nImage Analysis (features detected):")
		parts = append(parts, fmt.Sprintf("Labels: %s", strings.Join(ia.TopLabels(10), ", ")))
		if len(ia.HighConfidenceLabels) > 0 {
			parts = append(parts, fmt.Sprintf("High confidence: %s", strings.Join(ia.HighConfidenceLabels, ", ")))
		}
		parts = append(parts, fmt.Sprintf("Image URL: %s", ia.PublicURL))
	}

	if en := record.Enrichment; en != nil {
		parts = append(parts, "\nYouTube Trends:")
		for i, v := range en.Videos {
			if i == maxPromptVideos {
				break
			}
			parts = append(parts, fmt.Sprintf("- %s (%s) %s", v.Title, v.Channel, v.URL))
		}
		if len(en.TrendingKeywords) > 0 {
			kws := make([]string, 0, len(en.TrendingKeywords))
			for _, k := range en.TrendingKeywords {
				kws = append(kws, k.Keyword)
			}
			parts = append(parts, fmt.Sprintf("Trending keywords: %s", strings.Join(kws, ", ")))
		}
		if len(en.ContentThemes) > 0 {
			parts = append(parts, fmt.Sprintf("Content themes: %s", strings.Join(en.ContentThemes, ", ")))
		}
	}

	if c := record.Cultural; c != nil {
		parts = append(parts, "\nMarket Insights by Region:")
		markets, _ := json.MarshalIndent(c.Markets, "", "  ")
		parts = append(parts, string(markets))
		parts = append(parts, fmt.Sprintf("Tone: %s. Storytelling angle: %s", c.Guidelines.Tone, c.Guidelines.StorytellingAngle))
	}

	objectives, _ := json.MarshalIndent(req.CampaignObjectives, "", "  ")
	parts = append(parts, "\nCampaign Objectives:")
	parts = append(parts, string(objectives))

	parts = append(parts, "\nReturn ONLY one JSON object, no prose, that validates against this JSON schema:")
	parts = append(parts, string(validation.CampaignSchemaJSON()))

	return strings.Join(parts, "\n")
}
