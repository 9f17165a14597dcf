// internal/workers/campaign/intent-parser/config.go
package intentparser

import "time"

type Config struct {
	OuterBudget        time.Duration
	Tier1Timeout       time.Duration
	Tier1Enabled       bool
	ParallelEnrichment bool
	StoreTimeout       time.Duration
	SideEffectTimeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		OuterBudget:       60 * time.Second,
		Tier1Timeout:      45 * time.Second,
		Tier1Enabled:      true,
		StoreTimeout:      2 * time.Second,
		SideEffectTimeout: 5 * time.Second,
	}
}
