package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/repository"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

type mockRegisterRepo struct {
	existing  *models.User
	createErr error
	created   *models.User
}

func (m *mockRegisterRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.existing != nil {
		return m.existing, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegisterRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	stored := *user
	stored.ID = "generated"
	m.created = &stored
	return &stored, nil
}

func newRegisterService(repo *mockRegisterRepo) *RegisterService {
	return NewRegisterService(repo, testCodec(), "dlsu.edu.ph", validator.New(), zap.NewNop())
}

func TestClassifyLocalPart(t *testing.T) {
	cases := []struct {
		localPart string
		want      LocalPartClass
	}{
		{"juan_delacruz", ClassStudent},
		{"maria.santos", ClassFaculty},
		{"juan_dela.cruz", ClassInvalid},
		{"juandelacruz", ClassInvalid},
		{"_", ClassStudent},
		{".", ClassFaculty},
		{"", ClassInvalid},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyLocalPart(tc.localPart), tc.localPart)
	}
}

func TestRegisterStudent(t *testing.T) {
	repo := &mockRegisterRepo{}
	svc := newRegisterService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{Email: "juan_delacruz@dlsu.edu.ph", Password: "password"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	require.NotNil(t, repo.created)
	assert.Equal(t, models.RoleStudent, repo.created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("password")))

	claims, err := testCodec().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "generated", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestRegisterFaculty(t *testing.T) {
	repo := &mockRegisterRepo{}
	svc := newRegisterService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "maria.santos@dlsu.edu.ph", Password: "password"})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.RoleFaculty, repo.created.Role)
}

func TestRegisterWrongDomain(t *testing.T) {
	svc := newRegisterService(&mockRegisterRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "juan_delacruz@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDomain.Code, appErrors.FromError(err).Code)
}

func TestRegisterAmbiguousLocalPart(t *testing.T) {
	svc := newRegisterService(&mockRegisterRepo{})

	for _, email := range []string{
		"juan_dela.cruz@dlsu.edu.ph",
		"juandelacruz@dlsu.edu.ph",
	} {
		_, err := svc.Register(context.Background(), models.RegisterRequest{Email: email, Password: "password"})
		require.Error(t, err, email)
		assert.Equal(t, appErrors.ErrInvalidUsername.Code, appErrors.FromError(err).Code, email)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	repo := &mockRegisterRepo{existing: &models.User{ID: "u1", Email: "juan_delacruz@dlsu.edu.ph"}}
	svc := newRegisterService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "juan_delacruz@dlsu.edu.ph", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErrors.FromError(err).Code)
}

func TestRegisterLosesCreationRace(t *testing.T) {
	// The pre-check passed but another registration won the unique index.
	repo := &mockRegisterRepo{createErr: repository.ErrDuplicate}
	svc := newRegisterService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "juan_delacruz@dlsu.edu.ph", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErrors.FromError(err).Code)
}
