// internal/models/campaign.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// GenerationMethod tags which path produced the returned document.
type GenerationMethod string

const (
	MethodTier1Agent     GenerationMethod = "tier1_agent"
	MethodTier2Synthesis GenerationMethod = "tier2_synthesis"
	MethodTier2Fallback  GenerationMethod = "tier2_fallback"
)

// Platforms is the closed set of platform names a CampaignDocument may use.
var Platforms = []string{"Instagram", "TikTok", "YouTube", "LinkedIn", "Twitter", "Facebook"}

// VideoScriptTypes is the closed set of generated video script types.
var VideoScriptTypes = []string{"Short form video", "Long form video", "Tutorial", "Review"}

// NormalizePlatform maps a free-form platform name ("instagram", "X") onto
// the enumeration.
func NormalizePlatform(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "x", "twitter/x":
		return "Twitter", true
	case "youtube shorts":
		return "YouTube", true
	}
	for _, p := range Platforms {
		if strings.ToLower(p) == n {
			return p, true
		}
	}
	return "", false
}

// CampaignDocument is the schema-conformant campaign returned to callers.
type CampaignDocument struct {
	Product                 ProductSummary          `json:"product"`
	ContentIdeas            []ContentIdea           `json:"content_ideas"`
	Campaigns               []CampaignPlan          `json:"campaigns"`
	GeneratedAssets         GeneratedAssets         `json:"generated_assets"`
	RelatedYouTubeVideos    []RelatedVideo          `json:"related_youtube_videos"`
	PlatformRecommendations PlatformRecommendations `json:"platform_recommendations"`
	MarketInsights          MarketInsights          `json:"market_insights"`
}

type ProductSummary struct {
	Description string       `json:"description"`
	Image       ProductImage `json:"image"`
}

type ProductImage struct {
	PublicURL string   `json:"public_url"`
	S3Key     string   `json:"s3_key"`
	Labels    []string `json:"labels"`
}

type ContentIdea struct {
	Platform        string   `json:"platform"`
	Topic           string   `json:"topic"`
	EngagementScore float64  `json:"engagement_score"`
	Caption         string   `json:"caption"`
	Hashtags        []string `json:"hashtags"`
}

type CampaignPlan struct {
	Name         string            `json:"name"`
	Duration     string            `json:"duration"`
	PostsPerWeek int               `json:"posts_per_week"`
	Platforms    []string          `json:"platforms"`
	Calendar     map[string]string `json:"calendar"`
	Adaptations  map[string]string `json:"adaptations"`
}

// UnmarshalJSON accepts integral floats such as 3.0 for posts_per_week.
func (p *CampaignPlan) UnmarshalJSON(data []byte) error {
	type plain CampaignPlan
	aux := struct {
		*plain
		PostsPerWeek json.Number `json:"posts_per_week"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n, err := wholeNumber(aux.PostsPerWeek)
	if err != nil {
		return fmt.Errorf("posts_per_week: %w", err)
	}
	p.PostsPerWeek = int(n)
	return nil
}

type GeneratedAssets struct {
	ImagePrompts   []string        `json:"image_prompts"`
	VideoScripts   []VideoScript   `json:"video_scripts"`
	EmailTemplates []EmailTemplate `json:"email_templates"`
	BlogOutlines   []BlogOutline   `json:"blog_outlines"`
}

type VideoScript struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type EmailTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type BlogOutline struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

type RelatedVideo struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
	URL     string `json:"url"`
	Views   int64  `json:"views"`
}

// UnmarshalJSON accepts view counts written as 1.5e6.
func (v *RelatedVideo) UnmarshalJSON(data []byte) error {
	type plain RelatedVideo
	aux := struct {
		*plain
		Views json.Number `json:"views"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n, err := wholeNumber(aux.Views)
	if err != nil {
		return fmt.Errorf("views: %w", err)
	}
	v.Views = n
	return nil
}

// wholeNumber decodes n as an integer, allowing exponent or fractional
// notation as long as the value is integral. Empty means absent.
func wholeNumber(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%s is not a whole number", n)
	}
	return int64(f), nil
}

type PlatformRecommendations struct {
	PrimaryPlatforms []string `json:"primary_platforms"`
	Rationale        string   `json:"rationale"`
}

type MarketInsights struct {
	TrendingContentTypes   []string `json:"trending_content_types"`
	CulturalConsiderations []string `json:"cultural_considerations"`
	AudiencePreferences    []string `json:"audience_preferences"`
}

// CampaignResponse is the POST /campaigns success envelope.
type CampaignResponse struct {
	Success          bool              `json:"success"`
	CorrelationID    string            `json:"correlation_id"`
	GenerationMethod GenerationMethod  `json:"generation_method"`
	ProductID        string            `json:"product_id"`
	Campaign         *CampaignDocument `json:"campaign"`
	Warning          string            `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
