// internal/workers/campaign/campaign-agent/config.go
package campaignagent

import "time"

type Config struct {
	AgentID      string
	AgentAliasID string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AgentAliasID: "TSTALIASID",
		Timeout:      45 * time.Second,
	}
}

// Configured reports whether an agent is deployed for this environment.
func (c *Config) Configured() bool {
	return c.AgentID != "" && c.AgentAliasID != ""
}
