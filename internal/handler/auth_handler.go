package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// AuthHandler exposes the PIN gate endpoints.
type AuthHandler struct {
	service *service.AuthService
	userID  string
}

// NewAuthHandler constructs an auth handler. userID is the deployment's
// document owner; the PIN gate is shared, not per-account.
func NewAuthHandler(svc *service.AuthService, userID string) *AuthHandler {
	return &AuthHandler{service: svc, userID: userID}
}

// Status godoc
// @Summary Report whether a PIN is configured
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	configured, err := h.service.Status(c.Request.Context(), h.userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"configured": configured}, nil)
}

// Setup godoc
// @Summary Configure the initial PIN
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.PINRequest true "PIN payload"
// @Success 201 {object} response.Envelope
// @Router /auth/setup [post]
func (h *AuthHandler) Setup(c *gin.Context) {
	var req service.PINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	unlock, err := h.service.Setup(c.Request.Context(), h.userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, unlock)
}

// Unlock godoc
// @Summary Verify the PIN and issue a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.PINRequest true "PIN payload"
// @Success 200 {object} response.Envelope
// @Router /auth/unlock [post]
func (h *AuthHandler) Unlock(c *gin.Context) {
	var req service.PINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	unlock, err := h.service.Unlock(c.Request.Context(), h.userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, unlock, nil)
}

// ChangePIN godoc
// @Summary Rotate the PIN
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.ChangePINRequest true "PIN rotation payload"
// @Success 204
// @Router /auth/pin [put]
func (h *AuthHandler) ChangePIN(c *gin.Context) {
	var req service.ChangePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.ChangePIN(c.Request.Context(), h.userID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
