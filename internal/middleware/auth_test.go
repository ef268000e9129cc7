package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

func authTestRouter(codec *token.Codec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Authenticate(codec), func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		response.JSON(c, http.StatusOK, gin.H{"userId": claims.UserID, "role": claims.Role})
	})
	return r
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

func TestAuthenticateSuccess(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, "test")
	signed, err := codec.Sign(&models.User{ID: "u1", Email: "juan_delacruz@dlsu.edu.ph", Role: models.RoleStudent})
	require.NoError(t, err)

	r := authTestRouter(codec)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r := authTestRouter(token.NewCodec("secret", time.Hour, "test"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrMissingCredential.Code, decodeErrorCode(t, w.Body.Bytes()))
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, "test")
	signed, err := codec.Sign(&models.User{ID: "u1", Role: models.RoleStudent})
	require.NoError(t, err)

	r := authTestRouter(codec)
	for _, header := range []string{
		"Basic " + signed,
		signed,
		"Bearer",
		"Bearer one two",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, appErrors.ErrMalformedCredential.Code, decodeErrorCode(t, w.Body.Bytes()), header)
	}
}

func TestAuthenticateBadToken(t *testing.T) {
	signer := token.NewCodec("other-secret", time.Hour, "test")
	signed, err := signer.Sign(&models.User{ID: "u1", Role: models.RoleStudent})
	require.NoError(t, err)

	r := authTestRouter(token.NewCodec("secret", time.Hour, "test"))
	for _, tok := range []string{signed, "garbage"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, appErrors.ErrInvalidCredential.Code, decodeErrorCode(t, w.Body.Bytes()))
	}
}

func TestRequireRoles(t *testing.T) {
	codec := token.NewCodec("secret", time.Hour, "test")
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/faculty-only", Authenticate(codec), RequireRoles(models.RoleFaculty), func(c *gin.Context) {
		response.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	studentToken, err := codec.Sign(&models.User{ID: "s1", Role: models.RoleStudent})
	require.NoError(t, err)
	facultyToken, err := codec.Sign(&models.User{ID: "f1", Role: models.RoleFaculty})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/faculty-only", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/faculty-only", nil)
	req.Header.Set("Authorization", "Bearer "+facultyToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
