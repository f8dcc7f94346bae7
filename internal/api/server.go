package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/paperdigest/internal/llm"
	"github.com/dgallion1/paperdigest/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options holds the HTTP-facing settings.
type Options struct {
	APIKey         string
	MaxUploadBytes int64
}

// Server is the HTTP API server for paperdigest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          *llm.Instrumented
	log          *slog.Logger
	opts         Options
}

// NewServer creates and configures the HTTP server. client may be nil, in
// which case the stats endpoint reports unavailable.
func NewServer(orch *pipeline.Orchestrator, client *llm.Instrumented, log *slog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	s := &Server{
		orchestrator: orch,
		llm:          client,
		log:          log,
		opts:         opts,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(s.opts.APIKey, s.log))

		r.Post("/summarize", s.handleSummarize)
		r.Post("/summarize/batch", s.handleBatchSummarize)
		r.Get("/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/jobs/{jobID}/result", s.handleJobResult)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
		"jobs":        s.orchestrator.JobCount(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
