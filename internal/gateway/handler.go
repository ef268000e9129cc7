package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/middleware"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/token"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/config"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	reqidmiddleware "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/middleware/requestid"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

// SessionCookie is the HTTP-only cookie that carries the signed token
// between the browser and the gateway.
const SessionCookie = "token"

// Handler owns the public routes. Every backend call runs through the
// retrying Caller; role checks happen here before a request is forwarded.
type Handler struct {
	cfg      *config.Config
	caller   *Caller
	backends *Backends
	codec    *token.Codec
	logger   *zap.Logger
}

// NewHandler constructs the gateway handler.
func NewHandler(cfg *config.Config, caller *Caller, backends *Backends, codec *token.Codec, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, caller: caller, backends: backends, codec: codec, logger: logger}
}

// Register mounts the public API under /api.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(RateLimit(h.cfg.Gateway.RateLimitRPS, h.cfg.Gateway.RateLimitBurst))
	api.Use(cookieSession())

	api.POST("/login", h.Login)
	api.POST("/register", h.RegisterUser)
	api.POST("/logout", h.Logout)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(h.codec))

	authed.GET("/offerings", h.ListOfferings)

	students := authed.Group("")
	students.Use(middleware.RequireRoles(models.RoleStudent))
	students.GET("/offerings/open", h.ListOpenOfferings)
	students.POST("/enrollments", h.Enroll)
	students.GET("/grades", h.ListMyGrades)

	faculty := authed.Group("/faculty")
	faculty.Use(middleware.RequireRoles(models.RoleFaculty))
	faculty.GET("/offerings", h.ListFacultyOfferings)
	faculty.GET("/offerings/:id/students", h.ListStudents)
	faculty.POST("/grades", h.SetGrade)
	faculty.GET("/offerings/:id/roster", h.ExportRoster)
}

// cookieSession lifts the session cookie into the Authorization header so
// the shared token middleware can verify it. An explicit header wins.
func cookieSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if tok, err := c.Cookie(SessionCookie); err == nil && tok != "" {
				c.Request.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		c.Next()
	}
}

// Login godoc
// @Summary Authenticate and open a session
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /api/login [post]
func (h *Handler) Login(c *gin.Context) {
	h.issueSession(c, h.backends.Auth, "login", "/login")
}

// RegisterUser godoc
// @Summary Register a new account and open a session
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration details"
// @Success 201 {object} response.Envelope
// @Router /api/register [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	h.issueSession(c, h.backends.Register, "register", "/register")
}

// Logout godoc
// @Summary Close the current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	response.JSON(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) ListOfferings(c *gin.Context) {
	h.proxyGet(c, h.backends.Offering, "list_offerings", "/offerings")
}

func (h *Handler) ListOpenOfferings(c *gin.Context) {
	h.proxyGet(c, h.backends.Enrollment, "list_open_offerings", "/offerings/open")
}

func (h *Handler) Enroll(c *gin.Context) {
	h.proxyPost(c, h.backends.Enrollment, "enroll", "/enrollments")
}

func (h *Handler) ListMyGrades(c *gin.Context) {
	h.proxyGet(c, h.backends.StudentGrades, "list_grades", "/grades")
}

func (h *Handler) ListFacultyOfferings(c *gin.Context) {
	h.proxyGet(c, h.backends.FacultyGrades, "list_faculty_offerings", "/faculty/offerings")
}

func (h *Handler) ListStudents(c *gin.Context) {
	path := "/faculty/offerings/" + url.PathEscape(c.Param("id")) + "/students"
	h.proxyGet(c, h.backends.FacultyGrades, "list_students", path)
}

func (h *Handler) SetGrade(c *gin.Context) {
	h.proxyPost(c, h.backends.FacultyGrades, "set_grade", "/faculty/grades")
}

// ExportRoster relays the binary roster download, preserving the content
// type and filename the backend chose.
func (h *Handler) ExportRoster(c *gin.Context) {
	path := "/faculty/offerings/" + url.PathEscape(c.Param("id")) + "/roster"
	if format := c.Query("format"); format != "" {
		path += "?format=" + url.QueryEscape(format)
	}

	ctx, cancel := h.callContext(c)
	defer cancel()

	var attachment *Attachment
	err := h.caller.Do(ctx, "export_roster", func(ctx context.Context) error {
		var callErr error
		attachment, callErr = h.backends.FacultyGrades.Download(ctx, path, bearerToken(c), reqidmiddleware.Value(c))
		return callErr
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if attachment.Disposition != "" {
		c.Header("Content-Disposition", attachment.Disposition)
	}
	c.Data(http.StatusOK, attachment.ContentType, attachment.Payload)
}

// issueSession forwards a credential exchange and, on success, stores the
// returned token in the session cookie as well as the response body.
func (h *Handler) issueSession(c *gin.Context, client *Client, operation, path string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable payload"))
		return
	}

	ctx, cancel := h.callContext(c)
	defer cancel()

	var status int
	var data json.RawMessage
	err = h.caller.Do(ctx, operation, func(ctx context.Context) error {
		var callErr error
		status, data, callErr = client.Post(ctx, path, "", reqidmiddleware.Value(c), body)
		return callErr
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	var session models.TokenResponse
	if err := json.Unmarshal(data, &session); err == nil && session.Token != "" {
		h.setSessionCookie(c, session.Token, int(h.cfg.Token.TTL.Seconds()))
	}

	response.JSON(c, status, data)
}

func (h *Handler) proxyGet(c *gin.Context, client *Client, operation, path string) {
	ctx, cancel := h.callContext(c)
	defer cancel()

	var status int
	var data json.RawMessage
	err := h.caller.Do(ctx, operation, func(ctx context.Context) error {
		var callErr error
		status, data, callErr = client.Get(ctx, path, bearerToken(c), reqidmiddleware.Value(c))
		return callErr
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, status, data)
}

func (h *Handler) proxyPost(c *gin.Context, client *Client, operation, path string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable payload"))
		return
	}

	ctx, cancel := h.callContext(c)
	defer cancel()

	var status int
	var data json.RawMessage
	err = h.caller.Do(ctx, operation, func(ctx context.Context) error {
		var callErr error
		status, data, callErr = client.Post(ctx, path, bearerToken(c), reqidmiddleware.Value(c), body)
		return callErr
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, status, data)
}

func (h *Handler) callContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.cfg.Gateway.CallTimeout)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	secure := h.cfg.Env == config.EnvProduction
	c.SetCookie(SessionCookie, value, maxAge, "/", "", secure, true)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
