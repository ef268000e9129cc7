package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/middleware"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

// StudentGradesHandler exposes the student-facing grade endpoints.
type StudentGradesHandler struct {
	grades *service.GradeService
}

// NewStudentGradesHandler constructs StudentGradesHandler.
func NewStudentGradesHandler(grades *service.GradeService) *StudentGradesHandler {
	return &StudentGradesHandler{grades: grades}
}

// ListMyEnrollments godoc
// @Summary List the calling student's graded enrollments
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *StudentGradesHandler) ListMyEnrollments(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollments, err := h.grades.ListMyEnrollments(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enrollments": enrollments})
}
