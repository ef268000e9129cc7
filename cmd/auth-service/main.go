package main

import (
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/handler"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/repository"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/server"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/database"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/logger"
)

const defaultPort = 50051

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "auth-service")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.TTL, cfg.Token.Issuer)

	users := repository.NewUserRepository(db)
	auth := service.NewAuthService(users, codec, validator.New(), logr)
	authHandler := handler.NewAuthHandler(auth)

	srv := server.New(cfg, logr, metrics, db.Ping)
	srv.Engine().POST("/login", authHandler.Login)

	if err := srv.Run(defaultPort); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
