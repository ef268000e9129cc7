package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
)

// ErrOfferingMissing is returned by Admit when the target offering row does
// not exist.
var ErrOfferingMissing = errors.New("offering not found")

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Admit inserts an enrollment only while seats remain. The capacity check
// and the insert run inside one transaction holding a row lock on the
// offering, so concurrent admissions for the same offering serialize and
// the enrollment count can never exceed capacity.
//
// Returns (false, nil) when the offering is already full, ErrOfferingMissing
// when the offering does not exist and ErrDuplicate when the student already
// holds a seat in the offering.
func (r *EnrollmentRepository) Admit(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin admission: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var capacity int
	if err := tx.GetContext(ctx, &capacity,
		`SELECT capacity FROM course_offerings WHERE id = $1 FOR UPDATE`,
		enrollment.OfferingID); err != nil {
		if err == sql.ErrNoRows {
			return false, ErrOfferingMissing
		}
		return false, fmt.Errorf("lock offering: %w", err)
	}

	var enrolled int
	if err := tx.GetContext(ctx, &enrolled,
		`SELECT COUNT(*) FROM enrollments WHERE offering_id = $1`,
		enrollment.OfferingID); err != nil {
		return false, fmt.Errorf("count enrollments: %w", err)
	}

	if enrolled >= capacity {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO enrollments (id, student_id, offering_id, grade) VALUES ($1, $2, $3, NULL)`,
		enrollment.ID, enrollment.StudentID, enrollment.OfferingID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return false, ErrDuplicate
		}
		return false, fmt.Errorf("insert enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit admission: %w", err)
	}
	return true, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, offering_id, grade FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListGradedByStudent returns the student's enrollments that already carry a
// grade, in transcript order.
func (r *EnrollmentRepository) ListGradedByStudent(ctx context.Context, studentID string) ([]models.GradedEnrollment, error) {
	const query = `SELECT e.id, c.code AS course_code, c.units, co.section,
        co.school_year, co.term, e.grade
        FROM enrollments e
        JOIN course_offerings co ON e.offering_id = co.id
        JOIN courses c ON co.course_id = c.id
        WHERE e.student_id = $1 AND e.grade IS NOT NULL
        ORDER BY co.school_year, co.term, c.code`

	var enrollments []models.GradedEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list graded enrollments: %w", err)
	}
	return enrollments, nil
}

// RosterForOffering returns the class list for one offering.
func (r *EnrollmentRepository) RosterForOffering(ctx context.Context, offeringID string) ([]models.RosterEntry, error) {
	const query = `SELECT e.id AS enrollment_id, e.student_id, u.email AS student_email, e.grade
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        WHERE e.offering_id = $1
        ORDER BY e.id`

	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, offeringID); err != nil {
		return nil, fmt.Errorf("list offering roster: %w", err)
	}
	return entries, nil
}

// RosterHeaderForOffering returns the identifying header for a roster.
// sql.ErrNoRows means the offering does not exist.
func (r *EnrollmentRepository) RosterHeaderForOffering(ctx context.Context, offeringID string) (*models.RosterHeader, error) {
	const query = `SELECT co.id AS offering_id, c.code AS course_code, co.section,
        co.school_year, co.term
        FROM course_offerings co
        JOIN courses c ON co.course_id = c.id
        WHERE co.id = $1`

	var header models.RosterHeader
	if err := r.db.GetContext(ctx, &header, query, offeringID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("load roster header: %w", err)
	}
	return &header, nil
}

// UpdateGrade sets the grade for one enrollment. Returns sql.ErrNoRows when
// the enrollment does not exist.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, enrollmentID string, grade float64) error {
	const query = `UPDATE enrollments SET grade = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, enrollmentID, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update grade result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
