// internal/workers/campaign/campaign-synthesis/config.go
package campaignsynthesis

import "time"

const (
	ProviderHTTP    = "http"
	ProviderBedrock = "bedrock"
)

type Config struct {
	Provider     string
	GenAIBaseURL string
	GenAIAPIKey  string
	ModelID      string
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
}

func LoadConfig() *Config {
	return &Config{
		Provider:    ProviderHTTP,
		ModelID:     "amazon.nova-pro-v1:0",
		Timeout:     20 * time.Second,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}
