// Package server exposes plan generation over HTTP with health endpoints and
// graceful shutdown with connection draining.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/planforge/internal/agent"
	"github.com/felixgeelhaar/planforge/internal/errors"
	"github.com/felixgeelhaar/planforge/internal/log"
	"github.com/felixgeelhaar/planforge/internal/metrics"
	"github.com/felixgeelhaar/planforge/internal/orchestrator"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g. ":8080").
	Address string

	// ShutdownTimeout is the maximum time to wait for connections to drain.
	// Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wires the orchestrator and agent runner to HTTP.
type Server struct {
	httpServer      *http.Server
	orch            *orchestrator.Orchestrator
	runner          agent.Runner
	logger          *log.Logger
	metrics         *metrics.Metrics
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// New creates a server around an orchestrator and agent runner.
func New(orch *orchestrator.Orchestrator, runner agent.Runner, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Plan generation is fast, but keep headroom for slow clients.
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	s := &Server{
		orch:            orch,
		runner:          runner,
		logger:          log.DefaultLogger(),
		metrics:         metrics.GetDefault(),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the route table. Exposed separately for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/plans", s.handleGeneratePlan)
	mux.HandleFunc("GET /api/plans/{hash}/status", s.handleStatus)
	mux.HandleFunc("POST /api/agent/run", s.handleAgentRun)

	mux.HandleFunc("GET /health/live", s.handleLiveness)
	mux.HandleFunc("GET /health/ready", s.handleReadiness)
	mux.HandleFunc("GET /healthz", s.handleReadiness)

	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}

// Start runs the server. It blocks until the server stops, returning
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections, then waits for in-flight background
// enhancements so results are not lost mid-write.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.orch.Drain()
	return err
}

// generateRequest is the POST /api/plans payload.
type generateRequest struct {
	Task string `json:"task"`
}

// agentRunRequest is the POST /api/agent/run payload.
type agentRunRequest struct {
	Phase types.Phase `json:"phase"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest,
			errors.Wrap(errors.ErrCodeTaskEmpty, "request body is not valid JSON", err))
		return
	}

	result, err := s.orch.GeneratePlan(r.Context(), req.Task)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.orch.GetStatus(r.PathValue("hash"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleAgentRun(w http.ResponseWriter, r *http.Request) {
	var req agentRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest,
			errors.Wrap(errors.ErrCodePlanInvalid, "request body is not valid JSON", err))
		return
	}

	result, err := s.runner.Run(r.Context(), req.Phase)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// healthResponse is the health probe payload.
type healthResponse struct {
	Status string `json:"status"`
}

// handleLiveness always reports alive, even during shutdown.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleReadiness fails while draining so load balancers stop routing here.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.inShutdown.Load() {
		s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "shutting_down"})
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// errorResponse is the error payload shape.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Code: "INTERNAL", Message: err.Error()}

	var pfErr *errors.PlanforgeError
	if stderrors.As(err, &pfErr) {
		body.Code = string(pfErr.Code)
		body.Message = pfErr.Message
		body.Suggestions = pfErr.Suggestions
	}

	if s.metrics != nil {
		s.metrics.RecordError(body.Code)
	}
	s.logger.WithError(err).Warn("request failed", "status", status)
	s.writeJSON(w, status, errorResponse{Error: body})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}
