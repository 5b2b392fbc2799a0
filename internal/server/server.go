package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	applog "github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

const serviceName = "foodgram-api"

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New builds the router with the middleware chain and every API route
func New(cfg *config.Config, deps api.Deps) *Server {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		otelgin.Middleware(serviceName),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.MediaStorage == "local" {
		router.Static("/media", cfg.MediaRoot)
	}

	deps.Config = cfg
	api.RegisterRoutes(router, deps)

	return &Server{
		cfg:    cfg,
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	applog.Info(context.Background(), "http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// NewImageStore picks the media backend named by the configuration
func NewImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	switch cfg.MediaStorage {
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return service.NewS3ImageStore(s3cfg), nil
	case "local":
		return service.NewLocalImageStore(cfg.MediaRoot, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported media storage %q", cfg.MediaStorage)
	}
}
