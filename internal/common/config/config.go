// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Orchestrator  OrchestratorConfig      `mapstructure:"orchestrator"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	APIs          APIsConfig              `mapstructure:"apis"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int     `mapstructure:"port"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	ReadTimeout    int     `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int     `mapstructure:"write_timeout"` // milliseconds
}

// OrchestratorConfig bounds the two-tier pipeline.
type OrchestratorConfig struct {
	OuterBudget        int  `mapstructure:"outer_budget"`  // milliseconds
	Tier1Timeout       int  `mapstructure:"tier1_timeout"` // milliseconds
	Tier1Enabled       bool `mapstructure:"tier1_enabled"`
	ParallelEnrichment bool `mapstructure:"parallel_enrichment"`
	RecordTTL          int  `mapstructure:"record_ttl"` // seconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the per-step settings. Keys are the worker task types,
// e.g. "image-analysis" or "campaign-synthesis".
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// IntegrationConfig holds the AWS collaborators.
type IntegrationConfig struct {
	AWS struct {
		Region      string `mapstructure:"region"`
		ImageBucket string `mapstructure:"image_bucket"`
		Rekognition struct {
			Enabled       bool    `mapstructure:"enabled"`
			MaxLabels     int32   `mapstructure:"max_labels"`
			MinConfidence float32 `mapstructure:"min_confidence"`
		} `mapstructure:"rekognition"`
		BedrockAgent struct {
			Enabled      bool   `mapstructure:"enabled"`
			AgentID      string `mapstructure:"agent_id"`
			AgentAliasID string `mapstructure:"agent_alias_id"`
		} `mapstructure:"bedrock_agent"`
		Bedrock struct {
			ModelID     string  `mapstructure:"model_id"`
			MaxTokens   int     `mapstructure:"max_tokens"`
			Temperature float64 `mapstructure:"temperature"`
		} `mapstructure:"bedrock"`
		SQS struct {
			Enabled  bool   `mapstructure:"enabled"`
			QueueURL string `mapstructure:"queue_url"`
		} `mapstructure:"sqs"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// APIsConfig holds settings for the HTTP collaborators.
type APIsConfig struct {
	GenAI struct {
		Provider    string  `mapstructure:"provider"` // "http" or "bedrock"
		BaseURL     string  `mapstructure:"base_url"`
		APIKey      string  `mapstructure:"api_key"`
		MaxTokens   int     `mapstructure:"max_tokens"`
		Temperature float64 `mapstructure:"temperature"`
	} `mapstructure:"genai"`

	YouTube struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		MaxResults int    `mapstructure:"max_results"`
	} `mapstructure:"youtube"`

	CulturalInsights struct {
		Mode    string `mapstructure:"mode"` // "builtin" or "http"
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"cultural_insights"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	Tracing struct {
		Enabled        bool   `mapstructure:"enabled"`
		ServiceName    string `mapstructure:"service_name"`
		JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	} `mapstructure:"tracing"`
}
