package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// StartFocusRequest begins a countdown.
type StartFocusRequest struct {
	Seconds int `json:"seconds" binding:"required,min=1"`
}

// FocusHandler exposes the classroom countdown timer endpoints.
type FocusHandler struct {
	service *service.FocusService
	userID  string
}

// NewFocusHandler constructs a focus handler.
func NewFocusHandler(svc *service.FocusService, userID string) *FocusHandler {
	return &FocusHandler{service: svc, userID: userID}
}

// State godoc
// @Summary Get the current timer state
// @Tags Focus
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /focus [get]
func (h *FocusHandler) State(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.State(userIDFromContext(c, h.userID)), nil)
}

// Start godoc
// @Summary Start a fresh countdown
// @Tags Focus
// @Accept json
// @Produce json
// @Param payload body StartFocusRequest true "Timer payload"
// @Success 200 {object} response.Envelope
// @Router /focus/start [post]
func (h *FocusHandler) Start(c *gin.Context) {
	var req StartFocusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	state, err := h.service.Start(userIDFromContext(c, h.userID), time.Duration(req.Seconds)*time.Second)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Pause godoc
// @Summary Pause the countdown, preserving remaining time
// @Tags Focus
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /focus/pause [post]
func (h *FocusHandler) Pause(c *gin.Context) {
	state, err := h.service.Pause(userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Resume godoc
// @Summary Resume a paused countdown
// @Tags Focus
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /focus/resume [post]
func (h *FocusHandler) Resume(c *gin.Context) {
	state, err := h.service.Resume(userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Stop godoc
// @Summary Discard the countdown
// @Tags Focus
// @Success 204
// @Router /focus/stop [post]
func (h *FocusHandler) Stop(c *gin.Context) {
	h.service.Stop(userIDFromContext(c, h.userID))
	response.NoContent(c)
}
