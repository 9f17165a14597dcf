// internal/workers/campaign/image-analysis/config.go
package imageanalysis

import "time"

type Config struct {
	Timeout       time.Duration
	MaxLabels     int32
	MinConfidence float32
	DefaultBucket string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       15 * time.Second,
		MaxLabels:     50,
		MinConfidence: 60,
		DefaultBucket: "product-images-bucket-v2",
	}
}
