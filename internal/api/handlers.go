// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"campaign-orchestrator/internal/common/database"
	"campaign-orchestrator/internal/common/validation"
	"campaign-orchestrator/internal/models"
	intentparser "campaign-orchestrator/internal/workers/campaign/intent-parser"

	"github.com/google/uuid"
)

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later", uuid.NewString())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body too large or unreadable", uuid.NewString())
		return
	}

	req, result := validation.ValidateCampaignRequest(body)
	if !result.Valid {
		correlationID := uuid.NewString()
		s.logger.Warn("campaign request rejected", map[string]interface{}{
			"correlationId": correlationID,
			"errors":        result.GetErrorMessages(),
		})
		writeError(w, http.StatusBadRequest, result.Summary(), correlationID)
		return
	}

	out, err := s.generate(r.Context(), *req)
	if err != nil {
		s.logger.Error("campaign generation produced no document", map[string]interface{}{
			"error": err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "internal error", uuid.NewString())
		return
	}
	writeJSON(w, http.StatusOK, out.Response())
}

// generate turns a panic or a missing document into an error so the caller
// can answer 500.
func (s *Server) generate(ctx context.Context, req models.CampaignRequest) (out *intentparser.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, errors.New("orchestrator panicked")
			s.logger.Error("recovered from orchestrator panic", map[string]interface{}{"panic": rec})
		}
	}()

	out = s.deps.Generator.GenerateCampaign(ctx, req)
	if out == nil || out.Campaign == nil {
		return nil, errors.New("orchestrator returned no campaign")
	}
	return out, nil
}

func (s *Server) handleCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fields, err := s.deps.Records.Get(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "campaign not found", "")
		return
	case err != nil:
		s.logger.Error("failed to read campaign record", map[string]interface{}{
			"productId": id,
			"error":     err.Error(),
		})
		writeError(w, http.StatusServiceUnavailable, "status store unavailable", "")
		return
	}
	writeJSON(w, http.StatusOK, database.StatusFromRecord(id, fields))
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		writeError(w, http.StatusServiceUnavailable, "campaign archive is disabled", "")
		return
	}

	limit := database.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
		limit = n
	}
	status := r.URL.Query().Get("status")

	campaigns, err := s.deps.Archive.List(r.Context(), status, limit)
	if err != nil {
		s.logger.Error("failed to list campaigns", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusServiceUnavailable, "campaign archive unavailable", "")
		return
	}
	if campaigns == nil {
		campaigns = []models.CampaignSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"count":     len(campaigns),
		"campaigns": campaigns,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.deps.Checks))
	status, code := "ready", http.StatusOK
	for name, p := range s.deps.Checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, correlationID string) {
	writeJSON(w, status, models.ErrorResponse{
		Success:       false,
		Error:         message,
		CorrelationID: correlationID,
	})
}
