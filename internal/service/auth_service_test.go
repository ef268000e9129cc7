package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

type mockAuthRepo struct {
	user           *models.User
	findByEmailErr error
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.user, nil
}

func testCodec() *token.Codec {
	return token.NewCodec("secret", time.Hour, "test")
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{user: &models.User{
		ID:           "u1",
		Email:        "juan_delacruz@dlsu.edu.ph",
		PasswordHash: string(password),
		Role:         models.RoleStudent,
	}}
	codec := testCodec()
	svc := NewAuthService(repo, codec, validator.New(), zap.NewNop())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "juan_delacruz@dlsu.edu.ph", Password: "password"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "juan_delacruz@dlsu.edu.ph", claims.Email)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := NewAuthService(repo, testCodec(), validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "no_such@dlsu.edu.ph", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{user: &models.User{ID: "u1", Email: "juan_delacruz@dlsu.edu.ph", PasswordHash: string(password), Role: models.RoleStudent}}
	svc := NewAuthService(repo, testCodec(), validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "juan_delacruz@dlsu.edu.ph", Password: "wrong"})
	require.Error(t, err)

	// Wrong password and unknown account answer identically.
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Message, appErr.Message)
}

func TestAuthServiceLoginRepositoryFailure(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: errors.New("connection refused")}
	svc := NewAuthService(repo, testCodec(), validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "juan_delacruz@dlsu.edu.ph", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, testCodec(), validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
