package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/internal/service"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

// OfferingHandler exposes the read-only course view.
type OfferingHandler struct {
	offerings *service.OfferingService
}

// NewOfferingHandler constructs OfferingHandler.
func NewOfferingHandler(offerings *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{offerings: offerings}
}

// List godoc
// @Summary List all course offerings with enrollment counts
// @Tags Offerings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /offerings [get]
func (h *OfferingHandler) List(c *gin.Context) {
	offerings, err := h.offerings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"offerings": offerings})
}
