package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/framecraft/framecraft/internal/logging"
	"github.com/framecraft/framecraft/internal/playback"
	"github.com/framecraft/framecraft/internal/project"
	"github.com/framecraft/framecraft/internal/render"
	"github.com/framecraft/framecraft/internal/scene"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port     int
	Service  *project.Service
	Runner   *project.Runner
	Probe    *render.CachedProbe
	Playback playback.PlaybackService
	Logger   *slog.Logger

	// Generator backs both generation routes. GenerationConfigured and
	// GenerationModel are reported by /status only.
	Generator            project.SceneGenerator
	GenerationConfigured bool
	GenerationModel      string
	GenerateTimeout      time.Duration
	GenerateRPM          int

	// Validator is used by /validate and /compile. Nil means a fresh one.
	Validator *scene.Validator

	// AuthToken, when set, is required as a bearer token on every route
	// except /health and /renders.
	AuthToken string
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
