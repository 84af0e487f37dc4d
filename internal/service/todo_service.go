package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// CreateTodoRequest adds a task to the shared list.
type CreateTodoRequest struct {
	Text     string `json:"text" validate:"required"`
	Assignee string `json:"assignee" validate:"omitempty"`
}

// TodoService manages the deployment-wide shared task list. Unlike the
// per-teacher document fields, todos are visible to every signed-in user.
type TodoService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTodoService creates a todo service instance.
func NewTodoService(st store.Store, validate *validator.Validate, logger *zap.Logger) *TodoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoService{store: st, validator: validate, logger: logger}
}

// List returns every shared task, newest first.
func (s *TodoService) List(ctx context.Context) ([]models.Todo, error) {
	return s.store.ListTodos(ctx)
}

// Pending returns the open tasks only.
func (s *TodoService) Pending(ctx context.Context) ([]models.Todo, error) {
	todos, err := s.store.ListTodos(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]models.Todo, 0, len(todos))
	for _, todo := range todos {
		if !todo.Completed {
			pending = append(pending, todo)
		}
	}
	return pending, nil
}

// Create appends a task to the shared list.
func (s *TodoService) Create(ctx context.Context, userID string, req CreateTodoRequest) (*models.Todo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid todo payload")
	}
	assignee := strings.TrimSpace(req.Assignee)
	if assignee == "" {
		assignee = userID
	}
	return s.store.AddTodo(ctx, strings.TrimSpace(req.Text), assignee)
}

// Toggle flips a task's completion flag.
func (s *TodoService) Toggle(ctx context.Context, todoID string) (*models.Todo, error) {
	return s.store.ToggleTodo(ctx, todoID)
}

// Delete removes a task from the shared list.
func (s *TodoService) Delete(ctx context.Context, todoID string) error {
	return s.store.DeleteTodo(ctx, todoID)
}
