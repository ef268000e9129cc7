package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
)

// OfferingRepository handles reads over course offerings.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs the repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// ListWithEnrollmentCount returns every offering with its live seat usage.
func (r *OfferingRepository) ListWithEnrollmentCount(ctx context.Context) ([]models.OfferingSummary, error) {
	const query = `SELECT co.id, c.code AS course_code, c.units, co.section,
        co.school_year, co.term, co.capacity, u.email AS faculty_email,
        COUNT(e.id) AS enrolled_count
        FROM course_offerings co
        JOIN courses c ON co.course_id = c.id
        JOIN users u ON co.faculty_id = u.id
        LEFT JOIN enrollments e ON e.offering_id = co.id
        GROUP BY co.id, c.code, c.units, co.section, co.school_year, co.term, co.capacity, u.email
        ORDER BY co.school_year, co.term, c.code, co.section`

	var offerings []models.OfferingSummary
	if err := r.db.SelectContext(ctx, &offerings, query); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offerings, nil
}

// ListOpenForStudent returns every offering with seat usage plus a flag
// telling whether the given student already holds a seat in it.
func (r *OfferingRepository) ListOpenForStudent(ctx context.Context, studentID string) ([]models.OpenOffering, error) {
	const query = `SELECT co.id, c.code AS course_code, c.units, co.section,
        co.school_year, co.term, co.capacity, u.email AS faculty_email,
        COUNT(e.id) AS enrolled_count,
        COUNT(e2.id) > 0 AS is_enrolled
        FROM course_offerings co
        JOIN courses c ON co.course_id = c.id
        JOIN users u ON co.faculty_id = u.id
        LEFT JOIN enrollments e ON e.offering_id = co.id
        LEFT JOIN enrollments e2 ON e2.offering_id = co.id AND e2.student_id = $1
        GROUP BY co.id, c.code, c.units, co.section, co.school_year, co.term, co.capacity, u.email
        ORDER BY co.school_year, co.term DESC, c.code, co.section`

	var offerings []models.OpenOffering
	if err := r.db.SelectContext(ctx, &offerings, query, studentID); err != nil {
		return nil, fmt.Errorf("list open offerings: %w", err)
	}
	for i := range offerings {
		offerings[i].IsFull = offerings[i].EnrolledCount >= offerings[i].Capacity
	}
	return offerings, nil
}

// ListByFaculty returns offerings owned by the given faculty member.
func (r *OfferingRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.FacultyOffering, error) {
	const query = `SELECT co.id AS offering_id, co.course_id, c.code AS course_code,
        c.units, co.section, co.school_year, co.term
        FROM course_offerings co
        JOIN courses c ON co.course_id = c.id
        WHERE co.faculty_id = $1
        ORDER BY c.code, co.section`

	var offerings []models.FacultyOffering
	if err := r.db.SelectContext(ctx, &offerings, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty offerings: %w", err)
	}
	return offerings, nil
}

// GetAdmission returns the aggregate seat usage for one offering.
// sql.ErrNoRows means the offering does not exist.
func (r *OfferingRepository) GetAdmission(ctx context.Context, offeringID string) (*models.OfferingAdmission, error) {
	const query = `SELECT co.id, co.capacity, COUNT(e.id) AS enrolled_count
        FROM course_offerings co
        LEFT JOIN enrollments e ON e.offering_id = co.id
        WHERE co.id = $1
        GROUP BY co.id, co.capacity`

	var admission models.OfferingAdmission
	if err := r.db.GetContext(ctx, &admission, query, offeringID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get offering admission: %w", err)
	}
	return &admission, nil
}
