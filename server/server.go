// Package server exposes the reconciliation engine over HTTP for the
// dashboard frontend.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrodash/server/services"
)

// Server holds the HTTP surface and its collaborators.
type Server struct {
	reconciliation *services.ReconciliationService
	defaultWeight  float64
	logger         *slog.Logger
	engine         *gin.Engine
}

// New builds the server and registers all routes.
func New(reconciliation *services.ReconciliationService, defaultWeight float64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(RequestLogMiddleware(logger))
	engine.Use(CORSMiddleware())

	s := &Server{
		reconciliation: reconciliation,
		defaultWeight:  defaultWeight,
		logger:         logger,
		engine:         engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("/weeks", s.handleWeeks)
		api.GET("/labors", s.handleLabors)
		api.GET("/reconcile", s.handleReconcile)
		api.GET("/reconcile/export", s.handleReconcileExport)
		api.GET("/production/summary", s.handleProductionSummary)
		api.POST("/refresh", s.handleRefresh)
	}
}

// Handler returns the http.Handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("server listening", "addr", addr)
	return s.engine.Run(addr)
}
