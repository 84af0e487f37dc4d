package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// ScheduleHandler exposes the weekly timetable endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
	userID  string
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService, userID string) *ScheduleHandler {
	return &ScheduleHandler{service: svc, userID: userID}
}

// Week godoc
// @Summary Get the full weekly timetable
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	week, err := h.service.Week(c.Request.Context(), userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// Today godoc
// @Summary Get today's timetable entries
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/today [get]
func (h *ScheduleHandler) Today(c *gin.Context) {
	entries, err := h.service.Today(c.Request.Context(), userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ReplaceDay godoc
// @Summary Overwrite one weekday's entries
// @Tags Schedule
// @Accept json
// @Produce json
// @Param day path string true "Weekday (Monday..Friday)"
// @Param payload body service.ReplaceDayRequest true "Day payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/{day} [put]
func (h *ScheduleHandler) ReplaceDay(c *gin.Context) {
	var req service.ReplaceDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entries, err := h.service.ReplaceDay(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("day"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ClearDay godoc
// @Summary Remove every entry from one weekday
// @Tags Schedule
// @Param day path string true "Weekday (Monday..Friday)"
// @Success 204
// @Router /schedule/{day} [delete]
func (h *ScheduleHandler) ClearDay(c *gin.Context) {
	if err := h.service.ClearDay(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("day")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
