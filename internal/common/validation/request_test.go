package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCampaignRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantValid bool
		field     string
	}{
		{
			name: "full request",
			body: `{
				"product_info": {"name": "EcoSmart Bottle", "description": "Smart bottle", "category": "Lifestyle", "price": 39.99},
				"s3_info": {"bucket": "product-images-bucket-v2", "key": "uploads/u-1/bottle.jpg"},
				"target_markets": ["US", "JP"],
				"campaign_objectives": {"target_audience": "Young professionals", "budget": 5000}
			}`,
			wantValid: true,
		},
		{
			name:      "category only",
			body:      `{"product_info": {"name": "Desk Lamp", "category": "Home"}}`,
			wantValid: true,
		},
		{
			name:      "markets as comma string",
			body:      `{"product_info": {"name": "Desk Lamp", "category": "Home"}, "target_markets": "US, UK"}`,
			wantValid: true,
		},
		{
			name:      "not an object",
			body:      `[1,2,3]`,
			wantValid: false,
			field:     "",
		},
		{
			name:      "missing product_info",
			body:      `{"s3_info": {}}`,
			wantValid: false,
			field:     "product_info",
		},
		{
			name:      "blank name",
			body:      `{"product_info": {"name": "   ", "category": "Home"}}`,
			wantValid: false,
			field:     "product_info.name",
		},
		{
			name:      "no description or category",
			body:      `{"product_info": {"name": "Desk Lamp"}}`,
			wantValid: false,
			field:     "product_info",
		},
		{
			name:      "negative price",
			body:      `{"product_info": {"name": "Desk Lamp", "category": "Home", "price": -1}}`,
			wantValid: false,
			field:     "product_info.price",
		},
		{
			name:      "bucket without key",
			body:      `{"product_info": {"name": "Desk Lamp", "category": "Home"}, "s3_info": {"bucket": "my-bucket"}}`,
			wantValid: false,
			field:     "s3_info.key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, result := ValidateCampaignRequest([]byte(tt.body))
			require.NotNil(t, result)
			assert.Equal(t, tt.wantValid, result.Valid, "%v", result.GetErrorMessages())
			if tt.wantValid {
				require.NotNil(t, req)
				assert.NotEmpty(t, req.ProductInfo.Name)
				return
			}
			assert.Nil(t, req)
			assert.True(t, result.HasErrors(tt.field), "errors: %v", result.GetErrorMessages())
			assert.Contains(t, result.Summary(), "invalid request")
		})
	}
}

func TestValidateCampaignRequest_DecodesMarkets(t *testing.T) {
	req, result := ValidateCampaignRequest([]byte(`{
		"product_info": {"name": "Desk Lamp", "category": "Home"},
		"target_markets": {"markets": ["US", "DE"]}
	}`))
	require.True(t, result.Valid)
	assert.Equal(t, []string{"US", "DE"}, []string(req.TargetMarkets))
}
