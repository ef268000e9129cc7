package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("secret", 7*24*time.Hour, "enlistment-mesh")
	user := &models.User{ID: "u1", Email: "jane_doe@dlsu.edu.ph", Role: models.RoleStudent}

	signed, err := codec.Sign(user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	codec := NewCodec("secret", 7*24*time.Hour, "enlistment-mesh")
	issued := time.Now().UTC()
	codec.now = func() time.Time { return issued }

	signed, err := codec.Sign(&models.User{ID: "u1", Email: "jane_doe@dlsu.edu.ph", Role: models.RoleStudent})
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(7*24*time.Hour + time.Minute) }

	_, err = codec.Verify(signed)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredential.Code, appErr.Code)
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	signer := NewCodec("secret-a", time.Hour, "enlistment-mesh")
	verifier := NewCodec("secret-b", time.Hour, "enlistment-mesh")

	signed, err := signer.Sign(&models.User{ID: "u1", Email: "j.doe@dlsu.edu.ph", Role: models.RoleFaculty})
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredential.Code, appErr.Code)
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec := NewCodec("secret", time.Hour, "enlistment-mesh")

	_, err := codec.Verify("not-a-token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredential.Code, appErr.Code)
}
