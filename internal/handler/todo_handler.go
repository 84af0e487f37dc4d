package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/service"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/response"
)

// TodoHandler exposes the shared task list endpoints.
type TodoHandler struct {
	service *service.TodoService
	userID  string
}

// NewTodoHandler constructs a todo handler.
func NewTodoHandler(svc *service.TodoService, userID string) *TodoHandler {
	return &TodoHandler{service: svc, userID: userID}
}

// List godoc
// @Summary List shared tasks
// @Tags Todos
// @Produce json
// @Param pending query bool false "Only open tasks"
// @Success 200 {object} response.Envelope
// @Router /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	var (
		todos interface{}
		err   error
	)
	if c.Query("pending") == "true" {
		todos, err = h.service.Pending(c.Request.Context())
	} else {
		todos, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, todos, nil)
}

// Create godoc
// @Summary Add a shared task
// @Tags Todos
// @Accept json
// @Produce json
// @Param payload body service.CreateTodoRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req service.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	todo, err := h.service.Create(c.Request.Context(), userIDFromContext(c, h.userID), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, todo)
}

// Toggle godoc
// @Summary Flip a task's completion flag
// @Tags Todos
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /todos/{id}/toggle [post]
func (h *TodoHandler) Toggle(c *gin.Context) {
	todo, err := h.service.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, todo, nil)
}

// Delete godoc
// @Summary Remove a task
// @Tags Todos
// @Param id path string true "Task ID"
// @Success 204
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
