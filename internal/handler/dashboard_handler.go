package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// DashboardHandler exposes the composed overview endpoint.
type DashboardHandler struct {
	service *service.DashboardService
	userID  string
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc *service.DashboardService, userID string) *DashboardHandler {
	return &DashboardHandler{service: svc, userID: userID}
}

// Overview godoc
// @Summary Get the composed morning overview
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, cached, err := h.service.Overview(c.Request.Context(), userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}

// Refresh godoc
// @Summary Drop today's cached overview
// @Tags Dashboard
// @Success 204
// @Router /dashboard/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.service.Invalidate(c.Request.Context(), userIDFromContext(c, h.userID))
	response.NoContent(c)
}
