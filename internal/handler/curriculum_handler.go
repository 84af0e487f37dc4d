package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// CurriculumHandler exposes lesson plan endpoints.
type CurriculumHandler struct {
	service *service.CurriculumService
	userID  string
}

// NewCurriculumHandler constructs a curriculum handler.
func NewCurriculumHandler(svc *service.CurriculumService, userID string) *CurriculumHandler {
	return &CurriculumHandler{service: svc, userID: userID}
}

// Plan godoc
// @Summary Get the lesson plan for one slot
// @Tags Curriculum
// @Produce json
// @Param id path string true "Class ID"
// @Param term query string true "Term (t1|t2|t3)"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/curriculum/plan [get]
func (h *CurriculumHandler) Plan(c *gin.Context) {
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil || week < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week must be a positive number"))
		return
	}
	plan, err := h.service.Plan(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), models.TermID(c.Query("term")), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// TermPlans godoc
// @Summary Get every stored plan for a class and term
// @Tags Curriculum
// @Produce json
// @Param id path string true "Class ID"
// @Param term query string true "Term (t1|t2|t3)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/curriculum [get]
func (h *CurriculumHandler) TermPlans(c *gin.Context) {
	plans, err := h.service.TermPlans(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), models.TermID(c.Query("term")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Save godoc
// @Summary Overwrite the lesson plan for one slot
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.SaveLessonPlanRequest true "Plan payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/curriculum [put]
func (h *CurriculumHandler) Save(c *gin.Context) {
	var req service.SaveLessonPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plan, err := h.service.Save(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}
