package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"campaign-orchestrator/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed campaign_schema.json
var campaignSchemaJSON []byte

var campaignSchema = mustCompile(campaignSchemaJSON)

func mustCompile(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("campaign schema does not compile: %v", err))
	}
	return schema
}

// CampaignSchemaJSON returns the raw schema, used to instruct generative
// collaborators about the expected output.
func CampaignSchemaJSON() []byte {
	out := make([]byte, len(campaignSchemaJSON))
	copy(out, campaignSchemaJSON)
	return out
}

// ValidateCampaign checks a raw JSON document against the CampaignDocument
// schema. It reports violations instead of returning an error.
func ValidateCampaign(raw []byte) *ValidationResult {
	result, err := campaignSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return invalid("", fmt.Sprintf("document is not valid JSON: %v", err), "INVALID_JSON")
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	out := &ValidationResult{Valid: false}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    schemaErrorCode(desc.Type()),
		})
	}
	return out
}

// ValidateDocument validates an already-built document, e.g. the fallback.
func ValidateDocument(doc *models.CampaignDocument) *ValidationResult {
	if doc == nil {
		return invalid("", "document is nil", "REQUIRED_FIELD_MISSING")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return invalid("", err.Error(), "INVALID_JSON")
	}
	return ValidateCampaign(raw)
}

// ExtractAndValidate finds the first JSON object in free text, validates it
// against the campaign schema and decodes it. ok is false on any failure and
// violations explains why.
func ExtractAndValidate(text string) (doc *models.CampaignDocument, ok bool, violations []string) {
	candidate, found := ExtractJSONObject(text)
	if !found {
		return nil, false, []string{"no JSON object found in output"}
	}

	result := ValidateCampaign([]byte(candidate))
	if !result.Valid {
		return nil, false, result.GetErrorMessages()
	}

	var decoded models.CampaignDocument
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return nil, false, []string{fmt.Sprintf("decode: %v", err)}
	}
	return &decoded, true, nil
}

func schemaErrorCode(kind string) string {
	switch kind {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "pattern", "does_not_match_pattern":
		return "PATTERN_MISMATCH"
	case "string_gte":
		return "MIN_LENGTH_VIOLATION"
	case "string_lte":
		return "MAX_LENGTH_VIOLATION"
	case "array_min_items", "array_max_items", "array_min_properties":
		return "CARDINALITY_VIOLATION"
	case "number_gte", "number_lte":
		return "RANGE_VIOLATION"
	default:
		return "SCHEMA_VIOLATION"
	}
}
