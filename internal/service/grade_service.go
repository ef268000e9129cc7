package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/export"
)

type gradeEnrollmentRepository interface {
	ListGradedByStudent(ctx context.Context, studentID string) ([]models.GradedEnrollment, error)
	RosterForOffering(ctx context.Context, offeringID string) ([]models.RosterEntry, error)
	RosterHeaderForOffering(ctx context.Context, offeringID string) (*models.RosterHeader, error)
	UpdateGrade(ctx context.Context, enrollmentID string, grade float64) error
}

type facultyOfferingLister interface {
	ListByFaculty(ctx context.Context, facultyID string) ([]models.FacultyOffering, error)
}

// SetGradeRequest is the grade-upload payload.
type SetGradeRequest struct {
	EnrollmentID string  `json:"enrollmentId" validate:"required"`
	Grade        float64 `json:"grade" validate:"gte=0,lte=4"`
}

// RosterExportFormat selects the rendition of an exported class list.
type RosterExportFormat string

const (
	RosterExportCSV RosterExportFormat = "csv"
	RosterExportPDF RosterExportFormat = "pdf"
)

// GradeService serves the student grade view and the faculty grade-upload
// flows.
type GradeService struct {
	enrollments gradeEnrollmentRepository
	offerings   facultyOfferingLister
	cache       listingInvalidator
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs GradeService. The cache may be nil.
func NewGradeService(enrollments gradeEnrollmentRepository, offerings facultyOfferingLister, cache listingInvalidator, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		enrollments: enrollments,
		offerings:   offerings,
		cache:       cache,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		validator:   validate,
		logger:      logger,
	}
}

// ListMyEnrollments returns the calling student's graded enrollments.
func (s *GradeService) ListMyEnrollments(ctx context.Context, studentID string) ([]models.GradedEnrollment, error) {
	enrollments, err := s.enrollments.ListGradedByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch enrollments")
	}
	return enrollments, nil
}

// ListMyOfferings returns the offerings owned by the calling faculty member.
func (s *GradeService) ListMyOfferings(ctx context.Context, facultyID string) ([]models.FacultyOffering, error) {
	offerings, err := s.offerings.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch offerings")
	}
	return offerings, nil
}

// ListStudents returns the class list for one offering.
func (s *GradeService) ListStudents(ctx context.Context, offeringID string) (*models.Roster, error) {
	if offeringID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing offering")
	}

	header, err := s.enrollments.RosterHeaderForOffering(ctx, offeringID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}

	entries, err := s.enrollments.RosterForOffering(ctx, offeringID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	return &models.Roster{Offering: *header, Entries: entries}, nil
}

// SetGrade records a grade for a single enrollment.
func (s *GradeService) SetGrade(ctx context.Context, req SetGradeRequest) (*EnrollResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	if err := s.enrollments.UpdateGrade(ctx, req.EnrollmentID, req.Grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set grade")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "offerings:*"); err != nil {
			s.logger.Warn("offering cache invalidation failed", zap.Error(err))
		}
	}

	return &EnrollResult{Message: "Grade recorded"}, nil
}

// ExportRoster renders the class list for one offering as CSV or PDF.
func (s *GradeService) ExportRoster(ctx context.Context, offeringID string, format RosterExportFormat) ([]byte, string, error) {
	roster, err := s.ListStudents(ctx, offeringID)
	if err != nil {
		return nil, "", err
	}

	data := export.Roster{Headers: []string{"Enrollment", "Student Email", "Grade"}}
	for _, entry := range roster.Entries {
		grade := ""
		if entry.Grade != nil {
			grade = strconv.FormatFloat(*entry.Grade, 'f', 1, 64)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Enrollment":    entry.EnrollmentID,
			"Student Email": entry.StudentEmail,
			"Grade":         grade,
		})
	}

	title := fmt.Sprintf("%s %s %s T%d", roster.Offering.CourseCode, roster.Offering.Section, roster.Offering.SchoolYear, roster.Offering.Term)
	filename := fmt.Sprintf("roster-%s-%s", roster.Offering.CourseCode, roster.Offering.Section)

	switch format {
	case RosterExportPDF:
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return payload, filename + ".pdf", nil
	case RosterExportCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return payload, filename + ".csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
