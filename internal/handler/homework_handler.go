package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// HomeworkHandler exposes assignment tracking endpoints.
type HomeworkHandler struct {
	service *service.HomeworkService
	userID  string
}

// NewHomeworkHandler constructs a homework handler.
func NewHomeworkHandler(svc *service.HomeworkService, userID string) *HomeworkHandler {
	return &HomeworkHandler{service: svc, userID: userID}
}

// List godoc
// @Summary List assignments, optionally for one class
// @Tags Homework
// @Produce json
// @Param class query string false "Class ID filter"
// @Success 200 {object} response.Envelope
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	homework, err := h.service.List(c.Request.Context(), userIDFromContext(c, h.userID), c.Query("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, homework, nil)
}

// Create godoc
// @Summary Create an assignment
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body service.CreateHomeworkRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	var req service.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	homework, err := h.service.Create(c.Request.Context(), userIDFromContext(c, h.userID), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, homework)
}

// Delete godoc
// @Summary Delete an assignment
// @Tags Homework
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ToggleCompletion godoc
// @Summary Toggle one student's completion mark
// @Tags Homework
// @Produce json
// @Param id path string true "Assignment ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /homework/{id}/completion/{studentId} [post]
func (h *HomeworkHandler) ToggleCompletion(c *gin.Context) {
	studentID, err := strconv.ParseInt(c.Param("studentId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student id"))
		return
	}
	homework, err := h.service.ToggleCompletion(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, homework, nil)
}

// Pending godoc
// @Summary Count students still owing an assignment
// @Tags Homework
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /homework/{id}/pending [get]
func (h *HomeworkHandler) Pending(c *gin.Context) {
	pending, err := h.service.PendingCount(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"pending": pending}, nil)
}

// Watchlist godoc
// @Summary List the students missing the most assignments in a class
// @Tags Homework
// @Produce json
// @Param id path string true "Class ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/homework/watchlist [get]
func (h *HomeworkHandler) Watchlist(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid limit"))
			return
		}
		limit = parsed
	}
	watchlist, err := h.service.Watchlist(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, watchlist, nil)
}
