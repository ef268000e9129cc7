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

const defaultPort = 50056

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "register-service")
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
	register := service.NewRegisterService(users, codec, cfg.Registration.InstitutionDomain, validator.New(), logr)
	registerHandler := handler.NewRegisterHandler(register)

	srv := server.New(cfg, logr, metrics, db.Ping)
	srv.Engine().POST("/register", registerHandler.Register)

	if err := srv.Run(defaultPort); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
