// cmd/campaign-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campaign-orchestrator/internal/api"
	awsclients "campaign-orchestrator/internal/common/aws"
	"campaign-orchestrator/internal/common/camunda"
	"campaign-orchestrator/internal/common/config"
	"campaign-orchestrator/internal/common/database"
	"campaign-orchestrator/internal/common/logger"
	"campaign-orchestrator/internal/common/observability"

	ca "campaign-orchestrator/internal/workers/campaign/campaign-agent"
	cs "campaign-orchestrator/internal/workers/campaign/campaign-synthesis"
	ci "campaign-orchestrator/internal/workers/campaign/cultural-insights"
	de "campaign-orchestrator/internal/workers/campaign/data-enrichment"
	ia "campaign-orchestrator/internal/workers/campaign/image-analysis"
	ip "campaign-orchestrator/internal/workers/campaign/intent-parser"
	vq "campaign-orchestrator/internal/workers/campaign/visual-queue"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting campaign orchestrator...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	obs := observability.New(cfg.App.Name, zapLog)
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		Enabled:        cfg.Observability.Tracing.Enabled,
		ServiceName:    cfg.Observability.Tracing.ServiceName,
		ServiceVersion: cfg.App.Version,
		JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
	}, zapLog)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}

	checks := map[string]api.Pinger{}

	// --- Redis record store ---
	var records database.RecordStore = database.NoopRecordStore{}
	if cfg.Database.Redis.Enabled {
		redisClient := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()

		ttl := time.Duration(cfg.Orchestrator.RecordTTL) * time.Second
		records = database.NewRedisRecordStore(redisClient.Client, ttl)
		checks["redis"] = redisClient
		zapLog.Info("Redis connected successfully")
	}

	// --- Postgres campaign archive ---
	var archive ip.Archive
	var lister api.CampaignLister
	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		campaigns := database.NewCampaignArchive(pg.DB)
		if err := campaigns.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("campaign archive schema failed", zap.Error(err))
		}
		archive, lister = campaigns, campaigns
		checks["postgres"] = pg
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- AWS clients ---
	awsCfg, err := awsclients.LoadConfig(ctx, cfg.Integrations.AWS.Region)
	if err != nil {
		zapLog.Fatal("aws config failed", zap.Error(err))
	}
	awsSettings := cfg.Integrations.AWS

	// --- Step workers ---
	workerTimeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	var images ip.ImageAnalyzer
	var imageHandler *ia.Handler
	if awsSettings.Rekognition.Enabled && config.IsWorkerEnabled(cfg, ia.TaskType) {
		iaCfg := ia.LoadConfig()
		iaCfg.Timeout = workerTimeout(ia.TaskType)
		iaCfg.MaxLabels = awsSettings.Rekognition.MaxLabels
		iaCfg.MinConfidence = awsSettings.Rekognition.MinConfidence
		iaCfg.DefaultBucket = awsSettings.ImageBucket
		imageHandler = ia.NewHandler(iaCfg, awsclients.NewRekognitionClient(awsCfg), &imageAnalysisLoggerAdapter{log})
		images = imageHandler
	}

	deCfg := de.LoadConfig()
	deCfg.Timeout = workerTimeout(de.TaskType)
	deCfg.YouTubeBaseURL = cfg.APIs.YouTube.BaseURL
	deCfg.YouTubeAPIKey = cfg.APIs.YouTube.APIKey
	deCfg.MaxResults = cfg.APIs.YouTube.MaxResults
	enrichHandler := de.NewHandler(deCfg, &dataEnrichmentLoggerAdapter{log})

	ciCfg := ci.LoadConfig()
	ciCfg.Timeout = workerTimeout(ci.TaskType)
	ciCfg.Mode = cfg.APIs.CulturalInsights.Mode
	ciCfg.BaseURL = cfg.APIs.CulturalInsights.BaseURL
	ciCfg.APIKey = cfg.APIs.CulturalInsights.APIKey
	culturalHandler := ci.NewHandler(ciCfg, &culturalInsightsLoggerAdapter{log})

	csCfg := cs.LoadConfig()
	csCfg.Timeout = workerTimeout(cs.TaskType)
	csCfg.Provider = cfg.APIs.GenAI.Provider
	csCfg.GenAIBaseURL = cfg.APIs.GenAI.BaseURL
	csCfg.GenAIAPIKey = cfg.APIs.GenAI.APIKey
	csCfg.ModelID = awsSettings.Bedrock.ModelID
	csCfg.MaxTokens = cfg.APIs.GenAI.MaxTokens
	csCfg.Temperature = cfg.APIs.GenAI.Temperature
	var bedrock cs.BedrockAPI
	if csCfg.Provider == cs.ProviderBedrock {
		bedrock = awsclients.NewBedrockRuntimeClient(awsCfg)
		csCfg.MaxTokens = awsSettings.Bedrock.MaxTokens
		csCfg.Temperature = awsSettings.Bedrock.Temperature
	}
	synthesisHandler := cs.NewHandler(csCfg, bedrock, &campaignSynthesisLoggerAdapter{log})

	caCfg := ca.LoadConfig()
	caCfg.Timeout = config.GetDuration(cfg.Orchestrator.Tier1Timeout)
	caCfg.AgentID = awsSettings.BedrockAgent.AgentID
	if awsSettings.BedrockAgent.AgentAliasID != "" {
		caCfg.AgentAliasID = awsSettings.BedrockAgent.AgentAliasID
	}
	var runtime ca.AgentRuntime
	if awsSettings.BedrockAgent.Enabled {
		runtime = ca.NewBedrockAgentRuntime(awsclients.NewBedrockAgentClient(awsCfg))
	}
	agentHandler := ca.NewHandler(caCfg, runtime, &campaignAgentLoggerAdapter{log})

	vqCfg := vq.LoadConfig()
	vqCfg.Timeout = workerTimeout(vq.TaskType)
	vqCfg.Enabled = awsSettings.SQS.Enabled && config.IsWorkerEnabled(cfg, vq.TaskType)
	var sender vq.Sender
	if vqCfg.Enabled {
		sender = awsclients.NewSQSClient(awsCfg, awsSettings.SQS.QueueURL)
	}
	visualHandler := vq.NewHandler(vqCfg, sender, &visualQueueLoggerAdapter{log})

	// --- Orchestrator ---
	ipLog := &intentParserLoggerAdapter{log}
	sinks := ip.MultiSink{
		ip.LoggerSink{Logger: ipLog},
		ip.MetricsSink{},
		ip.StatusSink{Records: records, Logger: ipLog},
	}
	if awsSettings.SNS.Enabled {
		sinks = append(sinks, ip.SNSSink{
			Publisher: awsclients.NewSNSClient(awsCfg, awsSettings.SNS.TopicARN),
			Logger:    ipLog,
		})
	}

	ipCfg := ip.LoadConfig()
	ipCfg.OuterBudget = config.GetDuration(cfg.Orchestrator.OuterBudget)
	ipCfg.Tier1Timeout = config.GetDuration(cfg.Orchestrator.Tier1Timeout)
	ipCfg.Tier1Enabled = cfg.Orchestrator.Tier1Enabled
	ipCfg.ParallelEnrichment = cfg.Orchestrator.ParallelEnrichment

	orchestrator := ip.NewHandler(ipCfg, ip.Dependencies{
		Agent:       agentHandler,
		Images:      images,
		Enricher:    enrichHandler,
		Cultural:    culturalHandler,
		Synthesizer: synthesisHandler,
		Visual:      visualHandler,
		Archive:     archive,
		Records:     records,
		Events:      sinks,
		Metrics:     obs,
	}, ipLog)

	zapLog.Info("Campaign pipeline wired",
		zap.Bool("tier1Configured", agentHandler.Configured()),
		zap.Bool("imageAnalysis", images != nil),
		zap.Bool("visualQueue", visualHandler.Enabled()),
		zap.Bool("archive", archive != nil),
		zap.Int("eventSinks", len(sinks)),
	)

	// --- Zeebe workers ---
	var zeebeClient *camunda.Client
	var workers []*camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		handlers := map[string]camunda.JobHandler{
			ip.TaskType: orchestrator,
			ca.TaskType: agentHandler,
			de.TaskType: enrichHandler,
			ci.TaskType: culturalHandler,
			cs.TaskType: synthesisHandler,
			vq.TaskType: visualHandler,
		}
		if imageHandler != nil {
			handlers[ia.TaskType] = imageHandler
		}
		for taskType, handler := range handlers {
			if w := startWorker(zeebeClient, taskType, cfg, handler, zapLog); w != nil {
				workers = append(workers, w)
			}
		}
		zapLog.Info("Zeebe workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP server ---
	server := api.NewServer(api.Config{
		Port:           cfg.Server.Port,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		ReadTimeout:    config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:   config.GetDuration(cfg.Server.WriteTimeout),
	}, api.Dependencies{
		Generator: orchestrator,
		Records:   records,
		Archive:   lister,
		Checks:    checks,
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	orchestrator.Wait()

	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down metrics", zap.Error(err))
	}

	zapLog.Info("Campaign orchestrator stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, cfg *config.Config, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	wcfg := config.GetWorkerConfig(cfg, taskType)
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	// Activation timeout covers the handler's own budget plus completion.
	timeout := config.GetDuration(wcfg.Timeout) + config.GetDuration(cfg.Camunda.Timeout)
	return camunda.NewWorker(client.GetClient(), taskType, wcfg.MaxJobsActive, timeout, handler, log)
}

// Logger adapters for workers that have their own Logger interfaces
type intentParserLoggerAdapter struct {
	logger.Logger
}

func (a *intentParserLoggerAdapter) With(fields map[string]interface{}) ip.Logger {
	return &intentParserLoggerAdapter{a.Logger.With(fields)}
}

type campaignAgentLoggerAdapter struct {
	logger.Logger
}

func (a *campaignAgentLoggerAdapter) With(fields map[string]interface{}) ca.Logger {
	return &campaignAgentLoggerAdapter{a.Logger.With(fields)}
}

type imageAnalysisLoggerAdapter struct {
	logger.Logger
}

func (a *imageAnalysisLoggerAdapter) With(fields map[string]interface{}) ia.Logger {
	return &imageAnalysisLoggerAdapter{a.Logger.With(fields)}
}

type dataEnrichmentLoggerAdapter struct {
	logger.Logger
}

func (a *dataEnrichmentLoggerAdapter) With(fields map[string]interface{}) de.Logger {
	return &dataEnrichmentLoggerAdapter{a.Logger.With(fields)}
}

type culturalInsightsLoggerAdapter struct {
	logger.Logger
}

func (a *culturalInsightsLoggerAdapter) With(fields map[string]interface{}) ci.Logger {
	return &culturalInsightsLoggerAdapter{a.Logger.With(fields)}
}

type campaignSynthesisLoggerAdapter struct {
	logger.Logger
}

func (a *campaignSynthesisLoggerAdapter) With(fields map[string]interface{}) cs.Logger {
	return &campaignSynthesisLoggerAdapter{a.Logger.With(fields)}
}

type visualQueueLoggerAdapter struct {
	logger.Logger
}

func (a *visualQueueLoggerAdapter) With(fields map[string]interface{}) vq.Logger {
	return &visualQueueLoggerAdapter{a.Logger.With(fields)}
}
