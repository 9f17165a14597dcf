// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"campaign-orchestrator/internal/common/database"
	"campaign-orchestrator/internal/common/logger"
	"campaign-orchestrator/internal/models"
	intentparser "campaign-orchestrator/internal/workers/campaign/intent-parser"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

type Generator interface {
	GenerateCampaign(ctx context.Context, req models.CampaignRequest) *intentparser.Result
}

type StatusReader interface {
	Get(ctx context.Context, key string) (map[string]string, error)
}

type CampaignLister interface {
	List(ctx context.Context, status string, limit int) ([]models.CampaignSummary, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Dependencies for the HTTP boundary. Archive may be nil when Postgres is
// disabled; Checks are pinged by /ready.
type Dependencies struct {
	Generator Generator
	Records   StatusReader
	Archive   CampaignLister
	Checks    map[string]Pinger
}

type Server struct {
	config  Config
	deps    Dependencies
	logger  logger.Logger
	limiter *rate.Limiter
	mux     *http.ServeMux
	http    *http.Server
}

func NewServer(cfg Config, deps Dependencies, log logger.Logger) *Server {
	if deps.Records == nil {
		deps.Records = database.NoopRecordStore{}
	}
	s := &Server{
		config:  cfg,
		deps:    deps,
		logger:  log.With(map[string]interface{}{"component": "api"}),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /campaigns", s.handleCreateCampaign)
	s.mux.HandleFunc("GET /campaigns", s.handleListCampaigns)
	s.mux.HandleFunc("GET /campaigns/{id}/status", s.handleCampaignStatus)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if r.URL.Path == "/metrics" || r.URL.Path == "/health" {
			return
		}
		s.logger.Info("http request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}
