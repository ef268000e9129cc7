package main

import (
	"log"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/percivalmacalintal/Distributed-Fault-Tolerance/api/swagger"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/gateway"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/server"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/logger"
)

// @title Enlistment Gateway API
// @version 1.0.0
// @description Public boundary for the course enlistment service mesh
// @BasePath /api
// @schemes http

const defaultPort = 8080

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "gateway")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	metrics := service.NewMetricsService()
	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.TTL, cfg.Token.Issuer)

	caller := gateway.NewCaller(cfg.Gateway.RetryMaxAttempts, cfg.Gateway.RetryDelay, logr, metrics)
	backends := gateway.NewBackends(cfg.Gateway)
	gatewayHandler := gateway.NewHandler(cfg, caller, backends, codec, logr)

	srv := server.New(cfg, logr, metrics, nil)
	gatewayHandler.Register(srv.Engine())

	if cfg.Env != config.EnvProduction {
		srv.Engine().GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if err := srv.Run(defaultPort); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
