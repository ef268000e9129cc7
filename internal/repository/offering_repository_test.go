package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListWithEnrollmentCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_code", "units", "section", "school_year", "term", "capacity", "faculty_email", "enrolled_count"}).
		AddRow("o1", "CSARCH2", 3, "S11", "2024-2025", 2, 40, "maria.santos@dlsu.edu.ph", 12).
		AddRow("o2", "STSWENG", 3, "S12", "2024-2025", 2, 40, "maria.santos@dlsu.edu.ph", 40)
	mock.ExpectQuery("SELECT co.id, c.code AS course_code").
		WillReturnRows(rows)

	offerings, err := repo.ListWithEnrollmentCount(context.Background())
	require.NoError(t, err)
	require.Len(t, offerings, 2)
	assert.Equal(t, 12, offerings[0].EnrolledCount)
	assert.Equal(t, "maria.santos@dlsu.edu.ph", offerings[0].FacultyEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOpenForStudentComputesIsFull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_code", "units", "section", "school_year", "term", "capacity", "faculty_email", "enrolled_count", "is_enrolled"}).
		AddRow("o1", "CSARCH2", 3, "S11", "2024-2025", 2, 40, "maria.santos@dlsu.edu.ph", 40, false).
		AddRow("o2", "STSWENG", 3, "S12", "2024-2025", 2, 40, "maria.santos@dlsu.edu.ph", 5, true)
	mock.ExpectQuery("SELECT co.id, c.code AS course_code").
		WithArgs("s1").
		WillReturnRows(rows)

	offerings, err := repo.ListOpenForStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, offerings, 2)
	assert.True(t, offerings[0].IsFull)
	assert.False(t, offerings[0].IsEnrolled)
	assert.False(t, offerings[1].IsFull)
	assert.True(t, offerings[1].IsEnrolled)
}

func TestListByFaculty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	rows := sqlmock.NewRows([]string{"offering_id", "course_id", "course_code", "units", "section", "school_year", "term"}).
		AddRow("o1", "c1", "CSARCH2", 3, "S11", "2024-2025", 2)
	mock.ExpectQuery("SELECT co.id AS offering_id").
		WithArgs("f1").
		WillReturnRows(rows)

	offerings, err := repo.ListByFaculty(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, offerings, 1)
	assert.Equal(t, "CSARCH2", offerings[0].CourseCode)
}

func TestGetAdmissionUnknownOffering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	mock.ExpectQuery("SELECT co.id, co.capacity").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAdmission(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
