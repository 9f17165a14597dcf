// internal/models/request.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CampaignRequest is immutable once accepted by the boundary.
type CampaignRequest struct {
	ProductInfo        ProductInfo        `json:"product_info"`
	S3Info             S3Info             `json:"s3_info"`
	TargetMarkets      Markets            `json:"target_markets"`
	CampaignObjectives CampaignObjectives `json:"campaign_objectives"`
}

type ProductInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price,omitempty"`
	Features    []string `json:"features,omitempty"`
}

type S3Info struct {
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key,omitempty"`
}

func (s S3Info) HasImage() bool {
	return strings.TrimSpace(s.Key) != ""
}

type CampaignObjectives struct {
	TargetAudience      string     `json:"target_audience,omitempty"`
	CampaignDuration    string     `json:"campaign_duration,omitempty"`
	Budget              FlexString `json:"budget,omitempty"`
	PrimaryGoal         string     `json:"primary_goal,omitempty"`
	SecondaryGoals      []string   `json:"secondary_goals,omitempty"`
	PlatformPreferences []string   `json:"platform_preferences,omitempty"`
}

// Markets accepts either a JSON list of market names, an object of the form
// {"markets": [...]}, or a single string.
type Markets []string

func (m *Markets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}

	switch data[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("target_markets: %w", err)
		}
		*m = cleanMarkets(list)
	case '{':
		var wrapped struct {
			Markets Markets `json:"markets"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("target_markets: %w", err)
		}
		*m = wrapped.Markets
	case '"':
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("target_markets: %w", err)
		}
		*m = cleanMarkets(strings.Split(single, ","))
	default:
		return fmt.Errorf("target_markets: unsupported JSON value %s", string(data))
	}
	return nil
}

func cleanMarkets(in []string) Markets {
	out := make(Markets, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FlexString holds a value clients send either as a string or a number,
// e.g. a budget of 5000 or "$5,000".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}
