// internal/workers/campaign/data-enrichment/config.go
package dataenrichment

import "time"

type Config struct {
	YouTubeBaseURL string
	YouTubeAPIKey  string
	Timeout        time.Duration
	MaxResults     int
	MaxLabelTerms  int
}

func LoadConfig() *Config {
	return &Config{
		YouTubeBaseURL: "https://www.googleapis.com/youtube/v3",
		Timeout:        15 * time.Second,
		MaxResults:     10,
		MaxLabelTerms:  3,
	}
}
