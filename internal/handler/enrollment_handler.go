package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/middleware"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

// EnrollRequest carries the target offering for an enrollment attempt. The
// student comes from the verified token, never the payload.
type EnrollRequest struct {
	OfferingID string `json:"offeringId"`
}

// EnrollmentHandler exposes the enrollment service endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// ListOpen godoc
// @Summary List offerings annotated for the calling student
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /offerings/open [get]
func (h *EnrollmentHandler) ListOpen(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	offerings, err := h.enrollments.ListOpen(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"offerings": offerings})
}

// Enroll godoc
// @Summary Enroll the calling student into an offering
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body EnrollRequest true "Target offering"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.OfferingID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing offering"))
		return
	}

	result, err := h.enrollments.Enroll(c.Request.Context(), claims.UserID, req.OfferingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
