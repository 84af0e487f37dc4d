package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// TermHandler exposes term settings and resolution endpoints.
type TermHandler struct {
	service *service.TermService
	userID  string
}

// NewTermHandler constructs a term handler.
func NewTermHandler(svc *service.TermService, userID string) *TermHandler {
	return &TermHandler{service: svc, userID: userID}
}

// Settings godoc
// @Summary Get the configured term start dates
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /terms/settings [get]
func (h *TermHandler) Settings(c *gin.Context) {
	settings, err := h.service.Settings(c.Request.Context(), userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Replace the configured term start dates
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body service.UpdateTermSettingsRequest true "Term settings payload"
// @Success 200 {object} response.Envelope
// @Router /terms/settings [put]
func (h *TermHandler) Update(c *gin.Context) {
	var req service.UpdateTermSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	settings, err := h.service.Update(c.Request.Context(), userIDFromContext(c, h.userID), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Resolve godoc
// @Summary Resolve a date to its term and teaching week
// @Tags Terms
// @Produce json
// @Param date query string false "Date key (YYYY-MM-DD), default today"
// @Success 200 {object} response.Envelope
// @Router /terms/resolve [get]
func (h *TermHandler) Resolve(c *gin.Context) {
	dateKey := c.Query("date")
	if dateKey == "" {
		dateKey = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	position, err := h.service.Resolve(c.Request.Context(), userIDFromContext(c, h.userID), dateKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, position, nil)
}
