package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/models"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

// RegisterHandler exposes the registration endpoint.
type RegisterHandler struct {
	register *service.RegisterService
}

// NewRegisterHandler constructs RegisterHandler.
func NewRegisterHandler(register *service.RegisterService) *RegisterHandler {
	return &RegisterHandler{register: register}
}

// Register godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /register [post]
func (h *RegisterHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	res, err := h.register.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}
