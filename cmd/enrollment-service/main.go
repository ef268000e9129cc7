package main

import (
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/handler"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/middleware"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/repository"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/server"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/cache"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/database"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/logger"
)

const defaultPort = 50053

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "enrollment-service")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Offerings.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cache invalidation disabled", "error", err)
			redisClient = nil
		}
	}
	listingCache := repository.NewCacheRepository(redisClient, logr)
	defer listingCache.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.TTL, cfg.Token.Issuer)

	enrollments := service.NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewOfferingRepository(db),
		listingCache,
		logr,
	)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollments)

	srv := server.New(cfg, logr, metrics, db.Ping)
	students := srv.Engine().Group("", middleware.Authenticate(codec), middleware.RequireRoles(models.RoleStudent))
	students.GET("/offerings/open", enrollmentHandler.ListOpen)
	students.POST("/enrollments", enrollmentHandler.Enroll)

	if err := srv.Run(defaultPort); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
