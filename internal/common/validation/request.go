package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"campaign-orchestrator/internal/models"
)

// CampaignRequestSchema covers the shape of POST /campaigns bodies.
// target_markets is deliberately untyped: it may be a list, an object or a
// comma separated string.
var CampaignRequestSchema = JSONSchema{
	Type:                 "object",
	Required:             []string{"product_info"},
	AdditionalProperties: true,
	Properties: map[string]Property{
		"product_info": {
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]Property{
				"name":        {Type: "string", MinLength: intPtr(1), MaxLength: intPtr(200)},
				"description": {Type: "string", MaxLength: intPtr(2000)},
				"category":    {Type: "string", MaxLength: intPtr(100)},
				"price":       {Type: "number", Minimum: float64Ptr(0)},
				"features":    {Type: "array", Items: &Property{Type: "string", MaxLength: intPtr(200)}},
			},
		},
		"s3_info": {
			Type: "object",
			Properties: map[string]Property{
				"bucket": {Type: "string", Pattern: strPtr(`^[a-z0-9][a-z0-9.\-]{1,61}[a-z0-9]$`)},
				"key":    {Type: "string", MaxLength: intPtr(1024)},
			},
		},
		"target_markets": {Type: "any"},
		"campaign_objectives": {
			Type: "object",
			Properties: map[string]Property{
				"target_audience":      {Type: "string", MaxLength: intPtr(500)},
				"campaign_duration":    {Type: "string", MaxLength: intPtr(50)},
				"primary_goal":         {Type: "string", MaxLength: intPtr(200)},
				"secondary_goals":      {Type: "array", Items: &Property{Type: "string"}},
				"platform_preferences": {Type: "array", Items: &Property{Type: "string"}},
			},
		},
	},
}

// ValidateCampaignRequest checks the raw body against CampaignRequestSchema
// and decodes it. A nil request is returned whenever the result is invalid.
func ValidateCampaignRequest(body []byte) (*models.CampaignRequest, *ValidationResult) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, invalid("", "body must be a JSON object", "INVALID_JSON")
	}

	result := ValidateInput(raw, CampaignRequestSchema)
	if !result.Valid {
		return nil, result
	}

	var req models.CampaignRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, invalid("", err.Error(), "INVALID_TYPE")
	}

	req.ProductInfo.Name = strings.TrimSpace(req.ProductInfo.Name)
	if req.ProductInfo.Name == "" {
		return nil, invalid("product_info.name", "must not be blank", "REQUIRED_FIELD_MISSING")
	}
	if strings.TrimSpace(req.ProductInfo.Description) == "" && strings.TrimSpace(req.ProductInfo.Category) == "" {
		return nil, invalid("product_info", "description or category is required", "REQUIRED_FIELD_MISSING")
	}
	if req.S3Info.Bucket != "" && !req.S3Info.HasImage() {
		return nil, invalid("s3_info.key", "key is required when bucket is set", "REQUIRED_FIELD_MISSING")
	}

	return &req, result
}

func invalid(field, message, code string) *ValidationResult {
	return &ValidationResult{
		Valid:  false,
		Errors: []ValidationError{{Field: field, Message: message, Code: code}},
	}
}

// Summary flattens a result into one line for error envelopes.
func (vr *ValidationResult) Summary() string {
	if vr == nil || vr.Valid {
		return ""
	}
	return fmt.Sprintf("invalid request: %s", strings.Join(vr.GetErrorMessages(), "; "))
}

func float64Ptr(f float64) *float64 { return &f }
