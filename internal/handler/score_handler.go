package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// AnalyzeScoresRequest carries pasted assessment text, one student per line.
type AnalyzeScoresRequest struct {
	Text string `json:"text" binding:"required"`
}

// ScoreHandler exposes the pasted-score analysis endpoint.
type ScoreHandler struct{}

// NewScoreHandler constructs a score handler.
func NewScoreHandler() *ScoreHandler {
	return &ScoreHandler{}
}

// Analyze godoc
// @Summary Parse pasted score lines and summarise the batch
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body AnalyzeScoresRequest true "Score text payload"
// @Success 200 {object} response.Envelope
// @Router /scores/analyze [post]
func (h *ScoreHandler) Analyze(c *gin.Context) {
	var req AnalyzeScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entries := service.ParseScoreLines(req.Text)
	if len(entries) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no score lines found"))
		return
	}
	response.JSON(c, http.StatusOK, service.AnalyzeScores(entries), nil)
}
