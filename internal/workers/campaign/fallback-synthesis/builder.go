// internal/workers/campaign/fallback-synthesis/builder.go
package fallbacksynthesis

import (
	"fmt"
	"sort"
	"strings"

	"campaign-orchestrator/internal/models"
	imageanalysis "campaign-orchestrator/internal/workers/campaign/image-analysis"
)

const (
	DefaultBucket   = "product-images-bucket-v2"
	DefaultDuration = "30 days"

	maxContentIdeas = 5
	maxVideos       = 5
	maxLabels       = 10
	maxInsights     = 6
)

var defaultPlatforms = []string{"Instagram", "TikTok", "YouTube"}

type ideaTemplate struct {
	score    float64
	topic    string
	caption  string
	hashtags []string
	adapt    string
}

var ideaTemplates = map[string]ideaTemplate{
	"Instagram": {75, "Showcase %s lifestyle integration", "Discover the innovation behind %s. Experience quality that transforms your daily routine.",
		[]string{"#Innovation", "#Quality", "#Lifestyle"}, "Use high-quality images and short videos showcasing product features"},
	"TikTok": {85, "%s unboxing and first impressions", "Unboxing %s, you won't believe what's inside!",
		[]string{"#Unboxing", "#Review", "#MustHave"}, "Create short, engaging videos with trending music and quick tips"},
	"YouTube": {80, "Complete %s review and demonstration", "In-depth review of %s. Is it worth it? Watch to find out!",
		[]string{"#ProductReview", "#HonestReview", "#Tutorial"}, "Post comprehensive reviews and tutorials for in-depth content"},
	"LinkedIn": {65, "How %s improves everyday productivity", "See how teams put %s to work and what they learned along the way.",
		[]string{"#Innovation", "#Business", "#Productivity"}, "Share professional insights and industry connections"},
	"Twitter": {60, "Quick facts and launch news about %s", "Meet %s. Here is what makes it different, in one thread.",
		[]string{"#Launch", "#NewProduct", "#Trending"}, "Post short threads, polls and launch updates"},
	"Facebook": {70, "Community stories featuring %s", "Our community is sharing how %s fits into their lives. Tell us yours!",
		[]string{"#Community", "#Stories", "#Lifestyle"}, "Create groups and events for community interaction"},
}

const (
	viralIntro   = "Introduce the campaign with stunning visuals and tips for %s usage"
	viralWrapUp  = "Wrap up with contests and calls-to-action for engagement"
	viralSustain = "Sustain momentum with fresh tips and replies to the community"
)

var viralMiddle = []string{
	"Share user-generated content and customer testimonials",
	"Focus on product features and benefits with detailed content",
}

var communityCalendar = map[string]string{
	"Week 1": "Launch community challenges and engagement activities",
	"Week 2": "Share customer stories and success cases",
	"Week 3": "Host Q&A sessions and expert interviews",
	"Week 4": "Run contests and giveaways to boost participation",
	"Week 5": "Analyze results and plan follow-up activities",
	"Week 6": "Celebrate community achievements and announce winners",
}

// BuildFallback assembles a schema-conformant document from the request and
// whatever the Tier-2 steps produced. It performs no I/O, is deterministic
// for equal inputs and never fails; record may be nil.
func BuildFallback(req models.CampaignRequest, record *models.WorkingRecord) *models.CampaignDocument {
	if record == nil {
		record = &models.WorkingRecord{Request: req}
	}

	name := strings.TrimSpace(req.ProductInfo.Name)
	if name == "" {
		name = "Product"
	}
	category := strings.TrimSpace(req.ProductInfo.Category)
	if category == "" {
		category = "General"
	}

	platforms := selectPlatforms(req.CampaignObjectives.PlatformPreferences)

	return &models.CampaignDocument{
		Product:              buildProduct(req, record, name, category),
		ContentIdeas:         buildIdeas(platforms, name, category),
		Campaigns:            buildCampaigns(req, platforms, name),
		GeneratedAssets:      buildAssets(name, category),
		RelatedYouTubeVideos: buildVideos(record.Enrichment, name),
		PlatformRecommendations: models.PlatformRecommendations{
			PrimaryPlatforms: platforms,
			Rationale: fit(fmt.Sprintf("Selected %s based on target audience demographics and %s category performance. Visual platforms carry storytelling, short video drives reach and long video supports detailed demonstrations.",
				strings.Join(platforms, ", "), category), 50, 500, "Platform mix chosen for reach and engagement."),
		},
		MarketInsights: buildInsights(record.Cultural),
	}
}

func buildProduct(req models.CampaignRequest, record *models.WorkingRecord, name, category string) models.ProductSummary {
	desc := strings.TrimSpace(req.ProductInfo.Description)
	if desc == "" {
		desc = fmt.Sprintf("innovative %s product", category)
	}
	description := fit(fmt.Sprintf("%s - %s", name, truncate(desc, 200)), 20, 500, fmt.Sprintf("for the %s category", category))

	image := models.ProductImage{Labels: []string{}}
	if req.S3Info.HasImage() {
		bucket := req.S3Info.Bucket
		if bucket == "" {
			bucket = DefaultBucket
		}
		image.S3Key = req.S3Info.Key
		image.PublicURL = imageanalysis.PublicURL(bucket, req.S3Info.Key)
	}
	if ia := record.ImageAnalysis; ia != nil {
		if ia.PublicURL != "" {
			image.PublicURL = ia.PublicURL
		}
		for _, l := range ia.TopLabels(maxLabels) {
			if strings.TrimSpace(l) != "" {
				image.Labels = append(image.Labels, l)
			}
		}
	}
	if len(image.Labels) == 0 {
		image.Labels = []string{category, "Quality", "Innovation"}
	}

	return models.ProductSummary{Description: description, Image: image}
}

// selectPlatforms keeps the caller's preferences that map onto the platform
// enumeration, falling back to the default trio when fewer than two remain.
func selectPlatforms(prefs []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range prefs {
		if norm, ok := models.NormalizePlatform(p); ok {
			out = appendUnique(out, seen, norm)
		}
		if len(out) == maxContentIdeas {
			return out
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultPlatforms...)
	}
	for _, p := range defaultPlatforms {
		if len(out) >= 2 {
			break
		}
		out = appendUnique(out, seen, p)
	}
	return out
}

func buildIdeas(platforms []string, name, category string) []models.ContentIdea {
	ideas := make([]models.ContentIdea, 0, len(platforms))
	for _, p := range platforms {
		tpl := ideaTemplates[p]
		seen := map[string]bool{}
		tags := appendUnique(nil, seen, tpl.hashtags...)
		if tag, ok := hashtag(category); ok {
			tags = appendUnique(tags, seen, tag)
		}
		if tag, ok := hashtag(name); ok {
			tags = appendUnique(tags, seen, tag)
		}
		ideas = append(ideas, models.ContentIdea{
			Platform:        p,
			Topic:           fit(fmt.Sprintf(tpl.topic, name), 10, 200, "campaign"),
			EngagementScore: tpl.score,
			Caption:         fit(fmt.Sprintf(tpl.caption, name), 20, 500, "Learn more today."),
			Hashtags:        tags,
		})
	}
	return ideas
}

func buildCampaigns(req models.CampaignRequest, platforms []string, name string) []models.CampaignPlan {
	duration := strings.TrimSpace(req.CampaignObjectives.CampaignDuration)
	if duration == "" {
		duration = DefaultDuration
	}

	weeks := durationWeeks(duration)
	calendar := make(map[string]string, weeks)
	for w := 1; w <= weeks; w++ {
		var text string
		switch {
		case w == 1:
			text = fmt.Sprintf(viralIntro, name)
		case w == weeks:
			text = viralWrapUp
		case w-2 < len(viralMiddle):
			text = viralMiddle[w-2]
		default:
			text = viralSustain
		}
		calendar[fmt.Sprintf("Week %d", w)] = text
	}
	adaptations := make(map[string]string, len(platforms))
	for _, p := range platforms {
		adaptations[p] = ideaTemplates[p].adapt
	}

	community := make(map[string]string, len(communityCalendar))
	for k, v := range communityCalendar {
		community[k] = v
	}

	return []models.CampaignPlan{
		{
			Name:         campaignName(name, "Viral Marketing Campaign"),
			Duration:     duration,
			PostsPerWeek: 3,
			Platforms:    append([]string(nil), platforms...),
			Calendar:     calendar,
			Adaptations:  adaptations,
		},
		{
			Name:         campaignName(name, "Community Building Initiative"),
			Duration:     "45 days",
			PostsPerWeek: 2,
			Platforms:    []string{"Instagram", "Facebook", "LinkedIn"},
			Calendar:     community,
			Adaptations: map[string]string{
				"Instagram": "Focus on Stories, Reels, and community polls",
				"Facebook":  ideaTemplates["Facebook"].adapt,
				"LinkedIn":  ideaTemplates["LinkedIn"].adapt,
			},
		},
	}
}

func campaignName(name, suffix string) string {
	room := 100 - len([]rune(suffix)) - 1
	return truncate(name, room) + " " + suffix
}

func buildAssets(name, category string) models.GeneratedAssets {
	return models.GeneratedAssets{
		ImagePrompts: []string{
			fmt.Sprintf("A sleek %s displayed in a modern, well-lit setting showcasing its key features and premium quality", name),
			fmt.Sprintf("Action shot of %s in use, highlighting performance and user experience", name),
			fmt.Sprintf("Lifestyle image showing %s integrated into daily life with happy, satisfied users", name),
		},
		VideoScripts: []models.VideoScript{
			{Type: "Short form video", Content: fmt.Sprintf("Quick tour of %s features! From unboxing to first use, see why this is a game-changer.", name)},
			{Type: "Long form video", Content: fmt.Sprintf("In-depth review of %s: we break down every feature, test performance and share real user experiences.", name)},
		},
		EmailTemplates: []models.EmailTemplate{
			{
				Subject: fmt.Sprintf("Discover the Power of %s", name),
				Body:    fmt.Sprintf("Hello [Name],\n\nWe're excited to introduce you to %s, the innovative solution you've been waiting for.\n\nLearn more: [link]\n\nBest regards,\nThe %s Team", name, name),
			},
			{
				Subject: fmt.Sprintf("Your %s Success Story", name),
				Body:    fmt.Sprintf("Hi [Name],\n\nThank you for choosing %s! Here are some tips to get the most out of your purchase.\n\nShare your experience: [link]\n\nHappy exploring!\nThe %s Team", name, name),
			},
		},
		BlogOutlines: []models.BlogOutline{
			{
				Title: fmt.Sprintf("Why %s is Revolutionizing %s", name, category),
				Points: []string{
					fmt.Sprintf("Introduction to %s and its unique value proposition", name),
					"Key features that set it apart from competitors",
					"Real-world applications and use cases",
					"Customer testimonials and success stories",
				},
			},
			{
				Title: fmt.Sprintf("Getting Started with %s: A Complete Guide", name),
				Points: []string{
					"Unboxing and initial setup process",
					"Essential features and how to use them",
					"Tips and tricks for optimal performance",
					"Common questions and troubleshooting",
				},
			},
		},
	}
}

// buildVideos copies trend videos when at least two conform to the URL
// pattern, otherwise it returns two fixed placeholders.
func buildVideos(enrichment *models.EnrichmentResult, name string) []models.RelatedVideo {
	var out []models.RelatedVideo
	if enrichment != nil {
		for _, v := range enrichment.Videos {
			if !youtubeURLPattern.MatchString(v.URL) || strings.TrimSpace(v.Title) == "" {
				continue
			}
			views := v.Views
			if views < 0 {
				views = 0
			}
			out = append(out, models.RelatedVideo{Title: v.Title, Channel: v.Channel, URL: v.URL, Views: views})
			if len(out) == maxVideos {
				break
			}
		}
	}
	if len(out) >= 2 {
		return out
	}

	return []models.RelatedVideo{
		{
			Title:   fmt.Sprintf("%s Review & Features", name),
			Channel: "ProductReviews",
			URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Views:   15000,
		},
		{
			Title:   fmt.Sprintf("Unboxing the New %s", name),
			Channel: "TechUnboxing",
			URL:     "https://www.youtube.com/watch?v=xvFZjo5PgG0",
			Views:   8500,
		},
	}
}

func buildInsights(cultural *models.CulturalInsights) models.MarketInsights {
	insights := models.MarketInsights{
		TrendingContentTypes: []string{
			"Unboxing videos",
			"User testimonials",
			"Behind-the-scenes content",
			"Tutorial and how-to content",
		},
	}

	if cultural != nil && len(cultural.Markets) > 0 {
		keys := make([]string, 0, len(cultural.Markets))
		for k := range cultural.Markets {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		seenC, seenP := map[string]bool{}, map[string]bool{}
		for _, k := range keys {
			profile := cultural.Markets[k]
			for _, c := range profile.Considerations {
				if len(insights.CulturalConsiderations) < maxInsights {
					insights.CulturalConsiderations = appendUnique(insights.CulturalConsiderations, seenC, strings.TrimSpace(c))
				}
			}
			if len(profile.PreferredPlatforms) > 0 && len(insights.AudiencePreferences) < maxInsights {
				pref := fmt.Sprintf("%s audiences favour %s", profile.Market, strings.Join(profile.PreferredPlatforms, ", "))
				insights.AudiencePreferences = appendUnique(insights.AudiencePreferences, seenP, pref)
			}
		}
		if style := strings.TrimSpace(cultural.Guidelines.Tone); style != "" && len(insights.AudiencePreferences) < maxInsights {
			insights.AudiencePreferences = appendUnique(insights.AudiencePreferences, seenP, "Preferred tone: "+style)
		}
	}

	if len(insights.CulturalConsiderations) == 0 {
		insights.CulturalConsiderations = []string{
			"Emphasize quality and innovation for global markets",
			"Adapt messaging for regional preferences",
			"Use inclusive and authentic representation",
		}
	}
	if len(insights.AudiencePreferences) == 0 {
		insights.AudiencePreferences = []string{
			"Authentic, non-promotional content",
			"Influencer partnerships and user-generated content",
			"Short-form video content",
			"Interactive and educational content",
		}
	}
	return insights
}
