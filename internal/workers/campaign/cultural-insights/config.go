// internal/workers/campaign/cultural-insights/config.go
package culturalinsights

import "time"

const (
	ModeBuiltin = "builtin"
	ModeHTTP    = "http"
)

type Config struct {
	Mode    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Mode:    ModeBuiltin,
		Timeout: 10 * time.Second,
	}
}
