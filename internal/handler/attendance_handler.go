package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// AttendanceHandler exposes the daily register endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
	userID  string
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc *service.AttendanceService, userID string) *AttendanceHandler {
	return &AttendanceHandler{service: svc, userID: userID}
}

func dateKeyOrToday(c *gin.Context) (string, error) {
	dateKey := c.Query("date")
	if dateKey == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return dateKey, nil
}

// Day godoc
// @Summary Get the register for one class and date
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param date query string false "Date key (YYYY-MM-DD), default today"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance [get]
func (h *AttendanceHandler) Day(c *gin.Context) {
	dateKey, err := dateKeyOrToday(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	marks, err := h.service.History(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), dateKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"date": dateKey, "marks": marks}, nil)
}

// Toggle godoc
// @Summary Cycle one student's mark for the date
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Param date query string false "Date key (YYYY-MM-DD), default today"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId}/attendance/toggle [post]
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	dateKey, err := dateKeyOrToday(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.service.Toggle(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), dateKey, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"date": dateKey, "status": status}, nil)
}

// MarkAllPresent godoc
// @Summary Explicitly mark the whole class present for the date
// @Tags Attendance
// @Param id path string true "Class ID"
// @Param date query string false "Date key (YYYY-MM-DD), default today"
// @Success 204
// @Router /classes/{id}/attendance/mark-all [post]
func (h *AttendanceHandler) MarkAllPresent(c *gin.Context) {
	dateKey, err := dateKeyOrToday(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.MarkAllPresent(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), dateKey); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Rate godoc
// @Summary Get one student's attendance rate for the class
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId}/attendance/rate [get]
func (h *AttendanceHandler) Rate(c *gin.Context) {
	rate, err := h.service.Rate(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rate, nil)
}

// Absentees godoc
// @Summary List students marked absent on the date
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param date query string false "Date key (YYYY-MM-DD), default today"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance/absentees [get]
func (h *AttendanceHandler) Absentees(c *gin.Context) {
	dateKey, err := dateKeyOrToday(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	absent, err := h.service.AbsenteesOn(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), dateKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"date": dateKey, "absent": absent}, nil)
}
