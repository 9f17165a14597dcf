// internal/workers/campaign/cultural-insights/profiles.go
package culturalinsights

import "campaign-orchestrator/internal/models"

const globalMarket = "Global"

var marketProfiles = map[string]models.MarketProfile{
	"global": {
		Language:           "English",
		Timezone:           "UTC",
		PreferredPlatforms: []string{"Facebook", "Instagram", "YouTube"},
		CommunicationStyle: "professional",
		Considerations: []string{
			"Universal appeal in marketing",
			"Multilingual support recommended",
			"Time zone optimization for content delivery",
		},
		BestPostingTimes: []string{"9 AM - 11 AM", "6 PM - 8 PM"},
		CulturalNuances:  "General Western market assumptions",
	},
	"north america": {
		Language:           "English",
		Timezone:           "America/New_York, America/Los_Angeles",
		PreferredPlatforms: []string{"Instagram", "TikTok", "YouTube"},
		CommunicationStyle: "casual, humor-focused",
		Considerations: []string{
			"Direct calls to action work well",
			"User-generated content highly valued",
			"Emphasis on individual success stories",
		},
		BestPostingTimes: []string{"12 PM - 1 PM", "7 PM - 9 PM"},
		CulturalNuances:  "Fast-paced, trend-driven market",
	},
	"europe": {
		Language:           "Multiple (English, German, French, etc.)",
		Timezone:           "Europe/London, Europe/Berlin, Europe/Paris",
		PreferredPlatforms: []string{"Instagram", "Facebook", "TikTok"},
		CommunicationStyle: "sophisticated, value-driven",
		Considerations: []string{
			"Privacy and data protection important",
			"GDPR compliance essential",
			"Quality over quantity in content",
			"Sustainability messaging resonates",
		},
		BestPostingTimes: []string{"10 AM - 12 PM", "6 PM - 8 PM"},
		CulturalNuances:  "Quality-conscious, data privacy aware",
	},
	"asia": {
		Language:           "Multiple (Chinese, Japanese, Hindi, etc.)",
		Timezone:           "Asia/Shanghai, Asia/Tokyo, Asia/Hong_Kong",
		PreferredPlatforms: []string{"WeChat", "Douyin", "Instagram"},
		CommunicationStyle: "aspirational, community-focused",
		Considerations: []string{
			"Mobile-first consumption",
			"Live streaming highly popular",
			"Influencer partnerships crucial",
			"Localisation essential, not just translation",
			"Lucky numbers and color symbolism important",
		},
		BestPostingTimes: []string{"7 AM - 9 AM", "9 PM - 11 PM"},
		CulturalNuances:  "Fast-growing, mobile-dominant market",
	},
	"latin america": {
		Language:           "Spanish, Portuguese",
		Timezone:           "America/Mexico_City, America/Buenos_Aires",
		PreferredPlatforms: []string{"Instagram", "TikTok", "Facebook"},
		CommunicationStyle: "warm, family-oriented, festive",
		Considerations: []string{
			"Family values important in messaging",
			"Celebration and festivity resonate",
			"Spanish language nuances vary by country",
			"Music and visual storytelling key",
		},
		BestPostingTimes: []string{"11 AM - 1 PM", "8 PM - 10 PM"},
		CulturalNuances:  "Relationship-driven, festive market",
	},
}

const defaultCategory = "electronics"

var categoryGuidelines = map[string]models.CommunicationGuidelines{
	"electronics": {
		Tone:              "Tech-savvy, innovative",
		Focus:             []string{"Performance", "Innovation", "Durability"},
		Avoid:             []string{"Overstated claims", "Technical jargon for general audience"},
		StorytellingAngle: "Innovation changing lives",
	},
	"fashion": {
		Tone:              "Aspirational, trendy",
		Focus:             []string{"Style", "Quality", "Self-expression"},
		Avoid:             []string{"Unsustainable messaging", "Unrealistic body standards"},
		StorytellingAngle: "Expressing individuality",
	},
	"food": {
		Tone:              "Warm, sensory-rich",
		Focus:             []string{"Quality", "Taste", "Experience"},
		Avoid:             []string{"Health claims without evidence", "Cultural appropriation"},
		StorytellingAngle: "Creating shared experiences",
	},
	"health": {
		Tone:              "Trustworthy, evidence-based",
		Focus:             []string{"Wellness", "Science", "Personal care"},
		Avoid:             []string{"Medical claims without disclaimer", "Overpromising"},
		StorytellingAngle: "Empowering better choices",
	},
}

var sensitivityNotes = []string{
	"Always research local holidays and avoid insensitive timing",
	"Use diverse representation in visual content",
	"Respect local customs around food, religion, and traditions",
	"Ensure color symbolism is culturally appropriate",
	"Test messaging with local cultural experts",
	"Be aware of gender roles and family structures in target markets",
	"Consider local environmental and social values",
	"Avoid stereotypes and clichés about cultures",
}
