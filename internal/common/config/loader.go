// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Step task types with their default timeouts in milliseconds.
var defaultWorkerTimeouts = map[string]int{
	"image-analysis":     15000,
	"data-enrichment":    15000,
	"cultural-insights":  10000,
	"campaign-synthesis": 20000,
	"campaign-agent":     45000,
	"visual-queue":       5000,
	"generate-campaign":  60000,
}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// ENV override, e.g. APIS_YOUTUBE_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the conventional env names when
// the YAML left them blank.
func overrideEmptyConfig(cfg *Config) {
	envFallback := func(dst *string, name string) {
		if *dst == "" {
			if val := os.Getenv(name); val != "" {
				*dst = val
			}
		}
	}

	envFallback(&cfg.APIs.GenAI.APIKey, "GENAI_API_KEY")
	envFallback(&cfg.APIs.YouTube.APIKey, "YOUTUBE_API_KEY")
	envFallback(&cfg.APIs.CulturalInsights.APIKey, "CULTURAL_INSIGHTS_API_KEY")
	envFallback(&cfg.Integrations.AWS.Region, "AWS_REGION")
	envFallback(&cfg.Integrations.AWS.BedrockAgent.AgentID, "BEDROCK_AGENT_ID")
	envFallback(&cfg.Integrations.AWS.BedrockAgent.AgentAliasID, "BEDROCK_AGENT_ALIAS_ID")
	envFallback(&cfg.Integrations.AWS.SQS.QueueURL, "IMAGE_GENERATION_QUEUE_URL")
	envFallback(&cfg.Integrations.AWS.SNS.TopicARN, "CAMPAIGN_EVENTS_TOPIC_ARN")
	envFallback(&cfg.Database.Postgres.User, "DB_USER")
	envFallback(&cfg.Database.Postgres.Password, "DB_PASSWORD")
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "campaign-orchestrator"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 5
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}

	if cfg.Orchestrator.OuterBudget == 0 {
		cfg.Orchestrator.OuterBudget = 60000
	}
	if cfg.Orchestrator.Tier1Timeout == 0 {
		cfg.Orchestrator.Tier1Timeout = 45000
	}
	if cfg.Orchestrator.RecordTTL == 0 {
		cfg.Orchestrator.RecordTTL = 86400
	}
	// The response can only be written after the outer budget has elapsed.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = cfg.Orchestrator.OuterBudget + 5000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = defaultTimeout(key)
		}
		cfg.Workers[key] = worker
	}

	aws := &cfg.Integrations.AWS
	if aws.Region == "" {
		aws.Region = "us-east-1"
	}
	if aws.ImageBucket == "" {
		aws.ImageBucket = "product-images-bucket-v2"
	}
	if aws.Rekognition.MaxLabels == 0 {
		aws.Rekognition.MaxLabels = 50
	}
	if aws.Rekognition.MinConfidence == 0 {
		aws.Rekognition.MinConfidence = 60
	}
	if aws.Bedrock.ModelID == "" {
		aws.Bedrock.ModelID = "amazon.nova-pro-v1:0"
	}
	if aws.Bedrock.MaxTokens == 0 {
		aws.Bedrock.MaxTokens = 2048
	}
	if aws.Bedrock.Temperature == 0 {
		aws.Bedrock.Temperature = 0.7
	}

	if cfg.APIs.GenAI.Provider == "" {
		cfg.APIs.GenAI.Provider = "http"
	}
	if cfg.APIs.GenAI.MaxTokens == 0 {
		cfg.APIs.GenAI.MaxTokens = 2048
	}
	if cfg.APIs.GenAI.Temperature == 0 {
		cfg.APIs.GenAI.Temperature = 0.7
	}
	if cfg.APIs.YouTube.BaseURL == "" {
		cfg.APIs.YouTube.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.APIs.YouTube.MaxResults == 0 {
		cfg.APIs.YouTube.MaxResults = 10
	}
	if cfg.APIs.CulturalInsights.Mode == "" {
		cfg.APIs.CulturalInsights.Mode = "builtin"
	}

	if cfg.Observability.Tracing.ServiceName == "" {
		cfg.Observability.Tracing.ServiceName = cfg.App.Name
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}

	switch cfg.APIs.GenAI.Provider {
	case "http":
		if cfg.APIs.GenAI.BaseURL == "" {
			return fmt.Errorf("apis.genai.base_url is required for the http provider")
		}
	case "bedrock":
	default:
		return fmt.Errorf("apis.genai.provider must be http or bedrock, got %q", cfg.APIs.GenAI.Provider)
	}

	switch cfg.APIs.CulturalInsights.Mode {
	case "builtin":
	case "http":
		if cfg.APIs.CulturalInsights.BaseURL == "" {
			return fmt.Errorf("apis.cultural_insights.base_url is required for http mode")
		}
	default:
		return fmt.Errorf("apis.cultural_insights.mode must be builtin or http, got %q", cfg.APIs.CulturalInsights.Mode)
	}

	if cfg.Integrations.AWS.BedrockAgent.Enabled &&
		(cfg.Integrations.AWS.BedrockAgent.AgentID == "" || cfg.Integrations.AWS.BedrockAgent.AgentAliasID == "") {
		return fmt.Errorf("integrations.aws.bedrock_agent requires agent_id and agent_alias_id")
	}

	if cfg.Orchestrator.Tier1Timeout > cfg.Orchestrator.OuterBudget {
		return fmt.Errorf("orchestrator.tier1_timeout (%d) exceeds outer_budget (%d)",
			cfg.Orchestrator.Tier1Timeout, cfg.Orchestrator.OuterBudget)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func defaultTimeout(workerName string) int {
	if ms, ok := defaultWorkerTimeouts[workerName]; ok {
		return ms
	}
	return 15000
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       defaultTimeout(workerName),
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
