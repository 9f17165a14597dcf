// internal/models/record.go
package models

import "time"

// WorkingRecord is the request-scoped aggregate read by both synthesizers.
// Each optional field is written by exactly one Tier-2 step.
type WorkingRecord struct {
	CorrelationID string               `json:"correlation_id"`
	ProductID     string               `json:"product_id"`
	Request       CampaignRequest      `json:"request"`
	ImageAnalysis *ImageAnalysisResult `json:"image_analysis,omitempty"`
	Enrichment    *EnrichmentResult    `json:"enrichment,omitempty"`
	Cultural      *CulturalInsights    `json:"cultural_insights,omitempty"`
	Method        GenerationMethod     `json:"generation_method,omitempty"`
}

// Populated reports which optional fields are present, in pipeline order.
func (r *WorkingRecord) Populated() []string {
	var out []string
	if r.ImageAnalysis != nil {
		out = append(out, "image_analysis")
	}
	if r.Enrichment != nil {
		out = append(out, "enrichment")
	}
	if r.Cultural != nil {
		out = append(out, "cultural_insights")
	}
	return out
}

type ImageLabel struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Categories []string `json:"categories,omitempty"`
	Instances  int      `json:"instances,omitempty"`
}

type ImageAnalysisResult struct {
	Labels               []ImageLabel `json:"labels"`
	HighConfidenceLabels []string     `json:"high_confidence_labels"`
	UserID               string       `json:"user_id"`
	S3Key                string       `json:"s3_key"`
	PublicURL            string       `json:"public_url"`
	AnalyzedAt           time.Time    `json:"analyzed_at"`
}

// TopLabels returns up to n label names. Labels are kept sorted by
// descending confidence.
func (r *ImageAnalysisResult) TopLabels(n int) []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, n)
	for _, l := range r.Labels {
		if len(out) == n {
			break
		}
		out = append(out, l.Name)
	}
	return out
}

type TrendVideo struct {
	VideoID        string `json:"video_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Channel        string `json:"channel"`
	URL            string `json:"url"`
	Views          int64  `json:"views"`
	RelevanceScore int    `json:"relevance_score"`
	PublishedAt    string `json:"published_at,omitempty"`
}

type KeywordCount struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`
}

type EnrichmentResult struct {
	SearchQuery      string         `json:"search_query"`
	TotalResults     int            `json:"total_results"`
	Videos           []TrendVideo   `json:"videos"`
	TrendingKeywords []KeywordCount `json:"trending_keywords"`
	ContentThemes    []string       `json:"content_themes"`
}

type MarketProfile struct {
	Market             string   `json:"market"`
	Language           string   `json:"language"`
	Timezone           string   `json:"timezone"`
	PreferredPlatforms []string `json:"preferred_platforms"`
	CommunicationStyle string   `json:"communication_style"`
	Considerations     []string `json:"considerations"`
	BestPostingTimes   []string `json:"best_posting_times"`
	CulturalNuances    string   `json:"cultural_nuances"`
}

type CommunicationGuidelines struct {
	Tone              string   `json:"tone"`
	Focus             []string `json:"focus"`
	Avoid             []string `json:"avoid"`
	StorytellingAngle string   `json:"storytelling_angle"`
}

type CulturalInsights struct {
	Markets          map[string]MarketProfile `json:"market_insights"`
	Guidelines       CommunicationGuidelines  `json:"communication_guidelines"`
	SensitivityNotes []string                 `json:"cultural_sensitivity_notes"`
}
