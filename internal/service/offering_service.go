package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

const offeringListCacheKey = "offerings:all"

type offeringLister interface {
	ListWithEnrollmentCount(ctx context.Context) ([]models.OfferingSummary, error)
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// OfferingService serves the read-only course view.
type OfferingService struct {
	repo     offeringLister
	cache    listingCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewOfferingService constructs OfferingService. A nil cache disables
// caching entirely.
func NewOfferingService(repo offeringLister, cache listingCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *OfferingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// List returns every offering with its live enrollment count, served from
// cache when a fresh copy exists.
func (s *OfferingService) List(ctx context.Context) ([]models.OfferingSummary, error) {
	if s.cache != nil {
		start := time.Now()
		var cached []models.OfferingSummary
		err := s.cache.Get(ctx, offeringListCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true, time.Since(start))
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false, time.Since(start))
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("offering cache read failed", zap.Error(err))
		}
	}

	offerings, err := s.repo.ListWithEnrollmentCount(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, offeringListCacheKey, offerings, s.cacheTTL); err != nil {
			s.logger.Warn("offering cache write failed", zap.Error(err))
		}
	}

	return offerings, nil
}
