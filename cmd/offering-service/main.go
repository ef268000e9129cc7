package main

import (
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/handler"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/middleware"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/repository"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/server"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/cache"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/database"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/logger"
)

const defaultPort = 50052

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "offering-service")
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
			logr.Sugar().Warnw("redis unavailable, serving without cache", "error", err)
			redisClient = nil
		}
	}
	listingCache := repository.NewCacheRepository(redisClient, logr)
	defer listingCache.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.TTL, cfg.Token.Issuer)

	offerings := service.NewOfferingService(repository.NewOfferingRepository(db), listingCache, cfg.Offerings.CacheTTL, metrics, logr)
	offeringHandler := handler.NewOfferingHandler(offerings)

	srv := server.New(cfg, logr, metrics, db.Ping)
	srv.Engine().GET("/offerings", middleware.Authenticate(codec), offeringHandler.List)

	if err := srv.Run(defaultPort); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
