package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/repository"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

type enrollmentAdmitter interface {
	Admit(ctx context.Context, enrollment *models.Enrollment) (bool, error)
}

type openOfferingLister interface {
	ListOpenForStudent(ctx context.Context, studentID string) ([]models.OpenOffering, error)
}

type listingInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EnrollResult is the Enroll success response.
type EnrollResult struct {
	Message string `json:"message"`
}

// EnrollmentService coordinates capacity admission for course offerings.
type EnrollmentService struct {
	enrollments enrollmentAdmitter
	offerings   openOfferingLister
	cache       listingInvalidator
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. The cache may be nil.
func NewEnrollmentService(enrollments enrollmentAdmitter, offerings openOfferingLister, cache listingInvalidator, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{enrollments: enrollments, offerings: offerings, cache: cache, logger: logger}
}

// ListOpen returns offerings annotated for the calling student.
func (s *EnrollmentService) ListOpen(ctx context.Context, studentID string) ([]models.OpenOffering, error) {
	offerings, err := s.offerings.ListOpenForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open offerings")
	}
	return offerings, nil
}

// Enroll admits the student into the offering while seats remain. The
// admission runs as one indivisible store operation, so concurrent calls
// near the capacity boundary cannot overshoot it.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, offeringID string) (*EnrollResult, error) {
	if offeringID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing offering")
	}

	admitted, err := s.enrollments.Admit(ctx, &models.Enrollment{StudentID: studentID, OfferingID: offeringID})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOfferingMissing):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
		}
	}
	if !admitted {
		return nil, appErrors.Clone(appErrors.ErrOfferingFull, "")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "offerings:*"); err != nil {
			s.logger.Warn("offering cache invalidation failed", zap.Error(err))
		}
	}

	return &EnrollResult{Message: "Enrollment successful"}, nil
}
