// internal/workers/campaign/campaign-agent/prompt.go
package campaignagent

import (
	"encoding/json"
	"fmt"
	"strings"

	"campaign-orchestrator/internal/common/validation"
	"campaign-orchestrator/internal/models"
)

const defaultImageBucket = "product-images-bucket-v2"

func BuildPrompt(req models.CampaignRequest) string {
	product, _ := json.MarshalIndent(req.ProductInfo, "", "  ")
	markets, _ := json.Marshal(req.TargetMarkets)
	objectives, _ := json.MarshalIndent(req.CampaignObjectives, "", "  ")

	var parts []string
	parts = append(parts, "Generate a comprehensive viral marketing campaign based on:")
	parts = append(parts, "\nProduct Information:", string(product))
	parts = append(parts, "\nTarget Markets:", string(markets))
	parts = append(parts, "\nCampaign Objectives:", string(objectives))
	if req.S3Info.HasImage() {
		bucket := req.S3Info.Bucket
		if bucket == "" {
			bucket = defaultImageBucket
		}
		parts = append(parts, fmt.Sprintf("\nImage Location: s3://%s/%s", bucket, req.S3Info.Key))
	}
	parts = append(parts,
		"\nUse tool calling to:",
		"1. Analyze the product image",
		"2. Enrich campaign data with current video trends",
		"3. Analyze cultural insights for each target market",
		"\nThen synthesize the results into a complete campaign.",
		"Return ONLY one JSON object, no prose, that validates against this JSON schema:",
		string(validation.CampaignSchemaJSON()),
	)
	return strings.Join(parts, "\n")
}

func sessionID(correlationID string) string {
	return "session-" + correlationID
}
