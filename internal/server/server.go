// Package server wires the gin engine every binary in the mesh shares:
// recovery, request IDs, structured logging, CORS, metrics, and the
// health and readiness probes.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/middleware"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
	applogger "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/logger"
	corsmiddleware "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/middleware/cors"
	reqidmiddleware "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/middleware/requestid"
)

// ReadyCheck reports whether the service's dependencies are reachable.
type ReadyCheck func() error

// Server is one HTTP listener in the mesh.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	engine  *gin.Engine
	ready   ReadyCheck
	metrics *service.MetricsService
}

// New builds the engine with the shared middleware chain. A nil ready check
// means the service is always ready; a nil metrics service skips the
// /metrics endpoint and per-request observations.
func New(cfg *config.Config, logger *zap.Logger, metrics *service.MetricsService, ready ReadyCheck) *Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(applogger.GinMiddleware(logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}

	s := &Server{cfg: cfg, logger: logger, engine: r, ready: ready, metrics: metrics}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if s.ready != nil {
			if err := s.ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return s
}

// Engine exposes the router for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run blocks serving HTTP. defaultPort applies when PORT is unset.
func (s *Server) Run(defaultPort int) error {
	port := s.cfg.Port
	if port == 0 {
		port = defaultPort
	}

	addr := fmt.Sprintf(":%d", port)
	s.logger.Sugar().Infow("server starting", "addr", addr, "env", s.cfg.Env)

	return s.engine.Run(addr)
}
