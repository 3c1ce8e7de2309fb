// Package api exposes the JSON HTTP surface: dispatch, classification
// saves, progress polling, gateway proxying and result export.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"statflow/internal/container"
	"statflow/internal/logging"
)

// Server wires the HTTP routes over the application container
type Server struct {
	router *chi.Mux
	deps   *container.Container
	logger *logging.Logger
}

// NewServer creates the API server
func NewServer(deps *container.Container) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		logger: deps.Logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/gateway/status", s.handleGatewayStatus)
	s.router.Post("/gateway", s.handleGateway)

	s.router.With(requireOwner).Post("/projects", s.handleCreateProject)
	s.router.Route("/projects/{projectID}", func(r chi.Router) {
		r.Use(requireOwner)
		r.Post("/dataset", s.handleRegisterDataset)
		r.Post("/classification", s.handleSaveClassification)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/progress", s.handleProgress)
		r.Get("/export.xlsx", s.handleExportWorkbook)
		r.Get("/report.html", s.handleExportReport)
	})
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on the configured port
func (s *Server) Start() error {
	addr := ":" + s.deps.Config.Server.Port
	s.logger.Info("[API] listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
