// internal/workers/campaign/visual-queue/config.go
package visualqueue

import "time"

type Config struct {
	Enabled    bool
	Timeout    time.Duration
	MaxPrompts int
}

func LoadConfig() *Config {
	return &Config{
		Enabled:    true,
		Timeout:    5 * time.Second,
		MaxPrompts: 10,
	}
}
