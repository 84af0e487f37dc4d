package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// QuickNotesRequest overwrites the dashboard notepad.
type QuickNotesRequest struct {
	Notes string `json:"notes"`
}

// InsightHandler exposes the journal and assistant endpoints.
type InsightHandler struct {
	service *service.InsightService
	userID  string
}

// NewInsightHandler constructs an insight handler.
func NewInsightHandler(svc *service.InsightService, userID string) *InsightHandler {
	return &InsightHandler{service: svc, userID: userID}
}

// Journal godoc
// @Summary List journal entries
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /journal [get]
func (h *InsightHandler) Journal(c *gin.Context) {
	entries, err := h.service.Journal(c.Request.Context(), userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// AddJournalEntry godoc
// @Summary Add a hand-written journal entry
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body service.CreateJournalRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Router /journal [post]
func (h *InsightHandler) AddJournalEntry(c *gin.Context) {
	var req service.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.AddJournalEntry(c.Request.Context(), userIDFromContext(c, h.userID), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// DeleteJournalEntry godoc
// @Summary Remove a journal entry
// @Tags Insights
// @Param id path string true "Entry ID"
// @Success 204
// @Router /journal/{id} [delete]
func (h *InsightHandler) DeleteJournalEntry(c *gin.Context) {
	if err := h.service.DeleteJournalEntry(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Research godoc
// @Summary Generate an assistant research insight and file it in the journal
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body service.ResearchRequest true "Research payload"
// @Success 201 {object} response.Envelope
// @Router /insights/research [post]
func (h *InsightHandler) Research(c *gin.Context) {
	var req service.ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Research(c.Request.Context(), userIDFromContext(c, h.userID), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Report godoc
// @Summary Generate a progress report for one student
// @Tags Insights
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path int true "Student ID"
// @Param payload body service.ReportRequest false "Traits, notes and tone"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId}/report [post]
func (h *InsightHandler) Report(c *gin.Context) {
	studentID, err := strconv.ParseInt(c.Param("studentId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student id"))
		return
	}
	// The shaping payload is optional; an empty body keeps the default prompt.
	var req service.ReportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	report, err := h.service.Report(c.Request.Context(), userIDFromContext(c, h.userID), c.Param("id"), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// AdminCommand godoc
// @Summary Run a natural-language admin command
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body service.AdminCommandRequest true "Command payload"
// @Success 200 {object} response.Envelope
// @Router /insights/admin [post]
func (h *InsightHandler) AdminCommand(c *gin.Context) {
	var req service.AdminCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.AdminCommand(c.Request.Context(), userIDFromContext(c, h.userID), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// QuickNotes godoc
// @Summary Get the dashboard notepad
// @Tags Insights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notes [get]
func (h *InsightHandler) QuickNotes(c *gin.Context) {
	notes, err := h.service.QuickNotes(c.Request.Context(), userIDFromContext(c, h.userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"notes": notes}, nil)
}

// SaveQuickNotes godoc
// @Summary Overwrite the dashboard notepad
// @Tags Insights
// @Accept json
// @Param payload body QuickNotesRequest true "Notes payload"
// @Success 204
// @Router /notes [put]
func (h *InsightHandler) SaveQuickNotes(c *gin.Context) {
	var req QuickNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SaveQuickNotes(c.Request.Context(), userIDFromContext(c, h.userID), req.Notes); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
