package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/repository"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

type mockAdmitter struct {
	admitted bool
	err      error
	last     *models.Enrollment
}

func (m *mockAdmitter) Admit(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	m.last = enrollment
	return m.admitted, m.err
}

type mockOpenLister struct {
	offerings []models.OpenOffering
	err       error
}

func (m *mockOpenLister) ListOpenForStudent(ctx context.Context, studentID string) ([]models.OpenOffering, error) {
	return m.offerings, m.err
}

type mockInvalidator struct {
	patterns []string
	err      error
}

func (m *mockInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return m.err
}

func TestEnrollSuccess(t *testing.T) {
	admitter := &mockAdmitter{admitted: true}
	invalidator := &mockInvalidator{}
	svc := NewEnrollmentService(admitter, &mockOpenLister{}, invalidator, zap.NewNop())

	res, err := svc.Enroll(context.Background(), "s1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "Enrollment successful", res.Message)

	require.NotNil(t, admitter.last)
	assert.Equal(t, "s1", admitter.last.StudentID)
	assert.Equal(t, "o1", admitter.last.OfferingID)
	assert.Equal(t, []string{"offerings:*"}, invalidator.patterns)
}

func TestEnrollOfferingFull(t *testing.T) {
	svc := NewEnrollmentService(&mockAdmitter{admitted: false}, &mockOpenLister{}, nil, zap.NewNop())

	_, err := svc.Enroll(context.Background(), "s1", "o1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOfferingFull.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrOfferingFull.Status, appErr.Status)
}

func TestEnrollUnknownOffering(t *testing.T) {
	svc := NewEnrollmentService(&mockAdmitter{err: repository.ErrOfferingMissing}, &mockOpenLister{}, nil, zap.NewNop())

	_, err := svc.Enroll(context.Background(), "s1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollAlreadyEnrolled(t *testing.T) {
	svc := NewEnrollmentService(&mockAdmitter{err: repository.ErrDuplicate}, &mockOpenLister{}, nil, zap.NewNop())

	_, err := svc.Enroll(context.Background(), "s1", "o1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Code, appErrors.FromError(err).Code)
}

func TestEnrollMissingOffering(t *testing.T) {
	admitter := &mockAdmitter{admitted: true}
	svc := NewEnrollmentService(admitter, &mockOpenLister{}, nil, zap.NewNop())

	_, err := svc.Enroll(context.Background(), "s1", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, admitter.last)
}

func TestEnrollCacheFailureDoesNotSurface(t *testing.T) {
	invalidator := &mockInvalidator{err: assert.AnError}
	svc := NewEnrollmentService(&mockAdmitter{admitted: true}, &mockOpenLister{}, invalidator, zap.NewNop())

	res, err := svc.Enroll(context.Background(), "s1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "Enrollment successful", res.Message)
}

// seatLimitedAdmitter mimics the repository's admission contract: admits
// succeed only while seats remain, and duplicate seats are never granted.
type seatLimitedAdmitter struct {
	mu       sync.Mutex
	capacity int
	seats    map[string]struct{}
}

func (a *seatLimitedAdmitter) Admit(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, taken := a.seats[enrollment.StudentID]; taken {
		return false, repository.ErrDuplicate
	}
	if len(a.seats) >= a.capacity {
		return false, nil
	}
	a.seats[enrollment.StudentID] = struct{}{}
	return true, nil
}

func TestEnrollConcurrentAdmissionsRespectCapacity(t *testing.T) {
	const capacity = 5
	const students = 20

	admitter := &seatLimitedAdmitter{capacity: capacity, seats: make(map[string]struct{})}
	svc := NewEnrollmentService(admitter, &mockOpenLister{}, nil, zap.NewNop())

	var wg sync.WaitGroup
	var admitted, full int64
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), fmt.Sprintf("s%d", i), "o1")
			if err == nil {
				atomic.AddInt64(&admitted, 1)
				return
			}
			if appErrors.FromError(err).Code == appErrors.ErrOfferingFull.Code {
				atomic.AddInt64(&full, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, capacity, admitted)
	assert.EqualValues(t, students-capacity, full)
	assert.Len(t, admitter.seats, capacity)
}

func TestListOpen(t *testing.T) {
	lister := &mockOpenLister{offerings: []models.OpenOffering{
		{OfferingSummary: models.OfferingSummary{ID: "o1", CourseCode: "CSARCH2"}, IsEnrolled: true},
		{OfferingSummary: models.OfferingSummary{ID: "o2", CourseCode: "STSWENG"}, IsFull: true},
	}}
	svc := NewEnrollmentService(&mockAdmitter{}, lister, nil, zap.NewNop())

	offerings, err := svc.ListOpen(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, offerings, 2)
	assert.True(t, offerings[0].IsEnrolled)
	assert.True(t, offerings[1].IsFull)
}
