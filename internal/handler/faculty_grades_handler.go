package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/middleware"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

// FacultyGradesHandler exposes the faculty grading endpoints.
type FacultyGradesHandler struct {
	grades *service.GradeService
}

// NewFacultyGradesHandler constructs FacultyGradesHandler.
func NewFacultyGradesHandler(grades *service.GradeService) *FacultyGradesHandler {
	return &FacultyGradesHandler{grades: grades}
}

// ListMyOfferings godoc
// @Summary List offerings taught by the calling faculty member
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /faculty/offerings [get]
func (h *FacultyGradesHandler) ListMyOfferings(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	offerings, err := h.grades.ListMyOfferings(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"offerings": offerings})
}

// ListStudents godoc
// @Summary List the roster of one offering
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/offerings/{id}/students [get]
func (h *FacultyGradesHandler) ListStudents(c *gin.Context) {
	offeringID := c.Param("id")
	if offeringID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing offering"))
		return
	}

	roster, err := h.grades.ListStudents(c.Request.Context(), offeringID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// SetGrade godoc
// @Summary Record a grade for one enrollment
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SetGradeRequest true "Enrollment and grade"
// @Success 200 {object} response.Envelope
// @Router /faculty/grades [post]
func (h *FacultyGradesHandler) SetGrade(c *gin.Context) {
	var req service.SetGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.grades.SetGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ExportRoster godoc
// @Summary Download the roster of one offering as CSV or PDF
// @Tags Grades
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Offering ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Router /faculty/offerings/{id}/roster [get]
func (h *FacultyGradesHandler) ExportRoster(c *gin.Context) {
	offeringID := c.Param("id")
	if offeringID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing offering"))
		return
	}

	format := service.RosterExportFormat(c.DefaultQuery("format", string(service.RosterExportCSV)))
	payload, filename, err := h.grades.ExportRoster(c.Request.Context(), offeringID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "text/csv"
	if format == service.RosterExportPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
