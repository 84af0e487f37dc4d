package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// SeatingHandler exposes seating chart endpoints.
type SeatingHandler struct {
	service *service.SeatingService
	userID  string
}

// NewSeatingHandler constructs a seating handler.
func NewSeatingHandler(svc *service.SeatingService, userID string) *SeatingHandler {
	return &SeatingHandler{service: svc, userID: userID}
}

// Chart godoc
// @Summary Get the seating chart for a class
// @Tags Seating
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/seating [get]
func (h *SeatingHandler) Chart(c *gin.Context) {
	chart, err := h.service.Chart(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chart, nil)
}

// Save godoc
// @Summary Store a manual desk order
// @Tags Seating
// @Accept json
// @Param id path string true "Class ID"
// @Param payload body service.SaveSeatingRequest true "Seating payload"
// @Success 204
// @Router /classes/{id}/seating [put]
func (h *SeatingHandler) Save(c *gin.Context) {
	var req service.SaveSeatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Save(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reset godoc
// @Summary Revert the chart to roster order
// @Tags Seating
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id}/seating [delete]
func (h *SeatingHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
