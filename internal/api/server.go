package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papersum/papersum/internal/config"
	"github.com/papersum/papersum/internal/llm"
	"github.com/papersum/papersum/internal/metrics"
	"github.com/papersum/papersum/internal/pipeline"
	"github.com/papersum/papersum/internal/qa"
)

// Server is the HTTP API server for papersum.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          *llm.Client
	qa           *qa.Service
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, llmClient *llm.Client, qaSvc *qa.Service, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          llmClient,
		qa:           qaSvc,
		log:          log,
		cfg:          cfg,
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
	r.Use(metrics.Middleware)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.PapersumAPIKey, s.log))

		r.Post("/api/summarize", s.handleSummarize)

		r.Post("/api/papers", s.handleSubmitPaper)
		r.Get("/api/papers/{jobID}", s.handlePaperStatus)

		r.Post("/api/qa/upload", s.handleQAUpload)
		r.Post("/api/qa/ask", s.handleQAAsk)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
