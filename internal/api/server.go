// Package api is the HTTP front door: it accepts a query, runs the
// orchestration pipeline synchronously, and exposes lookup of past results.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"query-orchestrator/internal/common/config"
	apperrors "query-orchestrator/internal/common/errors"
	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/common/observability"
	"query-orchestrator/internal/history"
	"query-orchestrator/internal/models"
	"query-orchestrator/internal/store"
)

// Orchestrator is the single operation the front door consumes.
type Orchestrator interface {
	Orchestrate(ctx context.Context, query string) *models.OrchestrationResult
}

type Server struct {
	app          config.AppConfig
	orchestrator Orchestrator
	results      store.Store
	history      *history.Store
	obs          *observability.Observability
	logger       logger.Logger
}

func NewServer(
	app config.AppConfig,
	orch Orchestrator,
	results store.Store,
	obs *observability.Observability,
	log logger.Logger,
) *Server {
	return &Server{
		app:          app,
		orchestrator: orch,
		results:      results,
		obs:          obs,
		logger:       log.With(map[string]interface{}{"component": "api"}),
	}
}

// WithHistory enables the Postgres audit trail.
func (s *Server) WithHistory(h *history.Store) *Server {
	s.history = h
	return s
}

// Routes wires the handler set onto a fresh mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /query/{id}", s.handleGetQuery)
	return mux
}

type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse decorates the orchestration result with the minted query id.
type queryResponse struct {
	QueryID string `json:"queryId"`
	*models.OrchestrationResult
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query cannot be empty")
		return
	}

	queryID := uuid.NewString()
	started := time.Now()

	result := s.orchestrator.Orchestrate(r.Context(), req.Query)
	duration := time.Since(started)

	status := "success"
	if !result.Success {
		status = "failure"
	}
	if s.obs != nil {
		s.obs.RecordQueryProcessed(r.Context(), status)
		s.obs.RecordQueryDuration(r.Context(), duration, status)
	}

	if err := s.results.Save(r.Context(), queryID, result); err != nil {
		s.logger.Warn("result store save failed", map[string]interface{}{
			"queryId": queryID,
			"error":   err.Error(),
		})
	}
	if s.history != nil {
		s.history.Save(r.Context(), queryID, result, duration)
	}

	s.writeJSON(w, http.StatusOK, queryResponse{
		QueryID:             queryID,
		OrchestrationResult: result,
	})
}

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := s.results.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "no result for query id "+id)
		return
	}
	if err != nil {
		s.logger.Error("result lookup failed", map[string]interface{}{
			"queryId": id,
			"error":   err.Error(),
		})
		s.writeJSON(w, http.StatusInternalServerError, apperrors.NewStoreFailedError(err))
		return
	}

	s.writeJSON(w, http.StatusOK, queryResponse{
		QueryID:             id,
		OrchestrationResult: result,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": s.app.Name + " is running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.app.Name,
		"version": s.app.Version,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
