package main

import (
	"log"

	"github.com/go-playground/validator/v10"
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

const defaultPort = 50055

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "faculty-grades-service")
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

	grades := service.NewGradeService(
		repository.NewEnrollmentRepository(db),
		repository.NewOfferingRepository(db),
		listingCache,
		validator.New(),
		logr,
	)
	gradesHandler := handler.NewFacultyGradesHandler(grades)

	srv := server.New(cfg, logr, metrics, db.Ping)
	faculty := srv.Engine().Group("/faculty", middleware.Authenticate(codec), middleware.RequireRoles(models.RoleFaculty))
	faculty.GET("/offerings", gradesHandler.ListMyOfferings)
	faculty.GET("/offerings/:id/students", gradesHandler.ListStudents)
	faculty.POST("/grades", gradesHandler.SetGrade)
	faculty.GET("/offerings/:id/roster", gradesHandler.ExportRoster)

	if err := srv.Run(defaultPort); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
