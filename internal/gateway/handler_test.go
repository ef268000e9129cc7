package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
)

func gatewayConfig(backend string) *config.Config {
	return &config.Config{
		Env:   config.EnvDevelopment,
		Token: config.TokenConfig{Secret: "secret", TTL: time.Hour},
		Gateway: config.GatewayConfig{
			AuthAddr:          backend,
			RegisterAddr:      backend,
			OfferingAddr:      backend,
			EnrollmentAddr:    backend,
			StudentGradesAddr: backend,
			FacultyGradesAddr: backend,
			RetryMaxAttempts:  2,
			RetryDelay:        time.Millisecond,
			CallTimeout:       time.Second,
		},
	}
}

func newTestGateway(t *testing.T, backend http.HandlerFunc) (*gin.Engine, *token.Codec, func()) {
	t.Helper()
	srv := httptest.NewServer(backend)

	cfg := gatewayConfig(srv.URL)
	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.TTL, "test")
	caller := NewCaller(cfg.Gateway.RetryMaxAttempts, cfg.Gateway.RetryDelay, zap.NewNop(), nil)
	handler := NewHandler(cfg, caller, NewBackends(cfg.Gateway), codec, zap.NewNop())

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler.Register(engine)
	return engine, codec, srv.Close
}

func TestGatewayLoginSetsSessionCookie(t *testing.T) {
	engine, _, cleanup := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]string{"token": "signed-token"}})
	})
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"juan_delacruz@dlsu.edu.ph","password":"pw"}`))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "signed-token")

	var session *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookie {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.Equal(t, "signed-token", session.Value)
	assert.True(t, session.HttpOnly)
}

func TestGatewayLogoutClearsSessionCookie(t *testing.T) {
	engine, _, cleanup := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("logout must not reach a backend")
	})
	defer cleanup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var session *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookie {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
	assert.Negative(t, session.MaxAge)
}

func TestGatewayRejectsUnauthenticated(t *testing.T) {
	engine, _, cleanup := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unauthenticated call must not reach a backend")
	})
	defer cleanup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/offerings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatewayEnforcesStudentRole(t *testing.T) {
	engine, codec, cleanup := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("forbidden call must not reach a backend")
	})
	defer cleanup()

	facultyToken, err := codec.Sign(&models.User{ID: "f1", Email: "maria.santos@dlsu.edu.ph", Role: models.RoleFaculty})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/enrollments", strings.NewReader(`{"offeringId":"o1"}`))
	req.Header.Set("Authorization", "Bearer "+facultyToken)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGatewayAcceptsSessionCookie(t *testing.T) {
	var receivedAuth string
	engine, codec, cleanup := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{"offerings": []string{}}})
	})
	defer cleanup()

	studentToken, err := codec.Sign(&models.User{ID: "s1", Email: "juan_delacruz@dlsu.edu.ph", Role: models.RoleStudent})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/offerings/open", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: studentToken})
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bearer "+studentToken, receivedAuth)
}

func TestGatewayRelaysBusinessError(t *testing.T) {
	calls := 0
	engine, codec, cleanup := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPreconditionFailed)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": "OFFERING_FULL", "message": "offering is already full", "status": 412},
		})
	})
	defer cleanup()

	studentToken, err := codec.Sign(&models.User{ID: "s1", Role: models.RoleStudent})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/enrollments", strings.NewReader(`{"offeringId":"o1"}`))
	req.Header.Set("Authorization", "Bearer "+studentToken)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Contains(t, w.Body.String(), "OFFERING_FULL")
	// Business rejections are never retried.
	assert.Equal(t, 1, calls)
}
