package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// ExportHandler exposes report rendering and download endpoints.
type ExportHandler struct {
	service *service.ExportService
	userID  string
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService, userID string) *ExportHandler {
	return &ExportHandler{service: svc, userID: userID}
}

// Attendance godoc
// @Summary Render a class attendance report
// @Tags Exports
// @Produce json
// @Param id path string true "Class ID"
// @Param format query string false "Format (csv|pdf|xlsx)"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/exports/attendance [post]
func (h *ExportHandler) Attendance(c *gin.Context) {
	result, err := h.service.AttendanceReport(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Roster godoc
// @Summary Render a class roster report
// @Tags Exports
// @Produce json
// @Param id path string true "Class ID"
// @Param format query string false "Format (csv|pdf|xlsx)"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/exports/roster [post]
func (h *ExportHandler) Roster(c *gin.Context) {
	result, err := h.service.RosterReport(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a rendered report by signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing download token"))
		return
	}
	handle, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer handle.File.Close() //nolint:errcheck
	c.FileAttachment(handle.File.Name(), filepath.Base(handle.Name))
}
