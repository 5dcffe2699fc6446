// Package http exposes the wellness orchestrator over a JSON REST API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wellnesskit/wellness-agents/agent"
	"github.com/wellnesskit/wellness-agents/orchestrator"
	"github.com/wellnesskit/wellness-agents/profile"
)

// Version reported by /health and /
const Version = "1.0.0"

// Server wraps the orchestrator with HTTP endpoints
type Server struct {
	orch   *orchestrator.Orchestrator
	config Config
	logger *zap.Logger
	server *http.Server
}

// Config holds HTTP server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	EnableCORS   bool
	// MetricsHandler, when set, is served at /metrics
	MetricsHandler http.Handler
}

// NewServer creates a new HTTP server for the orchestrator
func NewServer(orch *orchestrator.Orchestrator, logger *zap.Logger, config Config) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 90 * time.Second // agent fan-out can be slow
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		orch:   orch,
		config: config,
		logger: logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	var handler http.Handler = mux
	if config.EnableCORS {
		handler = s.corsMiddleware(mux)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/wellness/query", s.queryHandler)
	mux.HandleFunc("/wellness/intents", s.intentsHandler)
	mux.HandleFunc("/wellness/memory/", s.memoryHandler)
	mux.HandleFunc("/docs", s.docsHandler)
	mux.HandleFunc("/", s.rootHandler)
	if s.config.MetricsHandler != nil {
		mux.Handle("/metrics", s.config.MetricsHandler)
	}
}

// QueryRequest represents an incoming wellness query
type QueryRequest struct {
	UserID  string               `json:"user_id"`
	Query   string               `json:"query"`
	Intent  string               `json:"intent,omitempty"`
	Profile *profile.UserProfile `json:"user_profile,omitempty"`
}

// QueryResponse represents the synthesized wellness response
type QueryResponse struct {
	UserID                 string        `json:"user_id"`
	Query                  string        `json:"query"`
	Intent                 string        `json:"intent"`
	AgentResponses         []agent.Reply `json:"agent_responses"`
	SynthesizedGuidance    string        `json:"synthesized_guidance"`
	PrimaryRecommendations []string      `json:"primary_recommendations"`
	AgentCount             int           `json:"agent_count"`
	Disclaimer             string        `json:"disclaimer"`
	Warning                string        `json:"warning,omitempty"`
	RequiresEmergency      bool          `json:"requires_emergency"`
}

// HealthResponse is the /health payload
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	AgentsAvailable int    `json:"agents_available"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// healthHandler provides a liveness probe
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "healthy",
		Version:         Version,
		AgentsAvailable: s.orch.AgentsAvailable(),
	})
}

// queryHandler handles wellness queries
func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		s.writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		s.writeError(w, "query is required", http.StatusBadRequest)
		return
	}

	result, err := s.orch.Process(r.Context(), orchestrator.Query{
		UserID:  req.UserID,
		Query:   req.Query,
		Intent:  req.Intent,
		Profile: req.Profile,
	})
	if err != nil {
		s.logger.Error("query processing failed", zap.String("user_id", req.UserID), zap.Error(err))
		s.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, QueryResponse{
		UserID:                 result.UserID,
		Query:                  result.Query,
		Intent:                 string(result.Intent),
		AgentResponses:         result.AgentResponses,
		SynthesizedGuidance:    result.SynthesizedGuidance,
		PrimaryRecommendations: result.PrimaryRecommendations,
		AgentCount:             result.AgentCount,
		Disclaimer:             result.Disclaimer,
		Warning:                result.Warning,
		RequiresEmergency:      result.RequiresEmergency,
	})
}

// intentsHandler lists the supported intent labels
func (s *Server) intentsHandler(w http.ResponseWriter, r *http.Request) {
	intents := orchestrator.Intents()
	labels := make([]string, 0, len(intents))
	for _, i := range intents {
		labels = append(labels, string(i))
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"intents": labels})
}

// memoryHandler serves conversation memory stats (GET) and clearing (DELETE)
// under /wellness/memory/{user_id}
func (s *Server) memoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/wellness/memory/")
	if userID == "" || strings.Contains(userID, "/") {
		s.writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		stats, err := s.orch.MemoryStats(r.Context(), userID)
		if err != nil {
			s.logger.Error("memory stats failed", zap.String("user_id", userID), zap.Error(err))
			s.writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	case http.MethodDelete:
		if err := s.orch.ClearMemory(r.Context(), userID); err != nil {
			s.logger.Error("memory clear failed", zap.String("user_id", userID), zap.Error(err))
			s.writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "user_id": userID})
	default:
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// rootHandler serves the welcome/endpoint index
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, "Not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Digital Wellness Assistant",
		"version": Version,
		"status":  "running",
		"endpoints": map[string]string{
			"health":  "/health",
			"query":   "/wellness/query (POST)",
			"intents": "/wellness/intents",
			"memory":  "/wellness/memory/{user_id} (GET, DELETE)",
			"docs":    "/docs",
		},
	})
}

// docsHandler serves a minimal HTML description of the API
func (s *Server) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, docsHTML)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	s.writeJSON(w, code, errorResponse{Error: message})
}

// corsMiddleware adds permissive CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled
// or the server fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", zap.Int("port", s.config.Port))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
