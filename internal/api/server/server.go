// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vocal-assistant/internal/api/middleware"
	v1routes "vocal-assistant/internal/api/v1/routes"
	"vocal-assistant/internal/app/pipeline"
	"vocal-assistant/internal/config"
)

// ShutdownTimeout bounds how long in-flight runs may finish after the
// serving context is cancelled.
const ShutdownTimeout = 30 * time.Second

// Server represents the API server
type Server struct {
	settings   config.ServerSettings
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds the router. metrics may be nil, in which case /metrics
// is not mounted.
func NewServer(settings config.ServerSettings, container *v1routes.ServiceContainer, metrics *pipeline.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(settings.Mode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Recovery(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		v1routes.RegisterRoutes(v1, container)
	}

	return &Server{
		settings: settings,
		router:   router,
		httpServer: &http.Server{
			Addr:         settings.Addr,
			Handler:      router,
			ReadTimeout:  settings.ReadTimeout,
			WriteTimeout: settings.WriteTimeout,
		},
		logger: logger,
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("API server listening", zap.String("address", ln.Addr().String()))

	errc := make(chan error, 1)
	go func() {
		errc <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
