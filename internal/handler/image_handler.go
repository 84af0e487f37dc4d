package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// ImageHandler exposes the schedule image endpoints.
type ImageHandler struct {
	service *service.ImageService
	userID  string
}

// NewImageHandler constructs an image handler.
func NewImageHandler(svc *service.ImageService, userID string) *ImageHandler {
	return &ImageHandler{service: svc, userID: userID}
}

// Images godoc
// @Summary Get both schedule images
// @Tags Images
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /images [get]
func (h *ImageHandler) Images(c *gin.Context) {
	images, err := h.service.Images(c.Request.Context(), userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, images, nil)
}

// Save godoc
// @Summary Store one schedule image slot
// @Tags Images
// @Accept json
// @Param slot path string true "Slot (weekly|yearly)"
// @Param payload body service.SaveImageRequest true "Image payload"
// @Success 204
// @Router /images/{slot} [put]
func (h *ImageHandler) Save(c *gin.Context) {
	var req service.SaveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Save(c.Request.Context(), userIDFromContext(c, h.userID), service.ImageSlot(c.Param("slot")), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Clear one schedule image slot
// @Tags Images
// @Param slot path string true "Slot (weekly|yearly)"
// @Success 204
// @Router /images/{slot} [delete]
func (h *ImageHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userIDFromContext(c, h.userID), service.ImageSlot(c.Param("slot"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
