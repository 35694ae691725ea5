package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"firewatch-go/internal/api/handlers"
	"firewatch-go/internal/api/middleware"
	"firewatch-go/internal/config"
)

// Server exposes the operational HTTP surface: health, worker info, and
// pipeline status. The domain CRUD API lives elsewhere.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler *handlers.HealthHandler
	statusHandler *handlers.StatusHandler
}

func NewServer(cfg *config.Config, store handlers.StatusStore, scheduler handlers.PipelineStatus) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		cfg:           cfg,
		router:        router,
		healthHandler: handlers.NewHealthHandler(cfg.WorkerID, cfg.Version),
		statusHandler: handlers.NewStatusHandler(store, scheduler),
	}

	router.Use(middleware.Logger(), middleware.Recovery())
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.WorkerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.statusHandler.GetStatus)
		v1.GET("/logs/chart", s.statusHandler.GetChartData)
	}
}

func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.Port).Msg("Starting ops API")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
