package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

func TestTodoCreateDefaultsAssignee(t *testing.T) {
	svc := NewTodoService(store.NewMemoryStore(nil), nil, nil)
	ctx := context.Background()

	todo, err := svc.Create(ctx, "teacher", CreateTodoRequest{Text: "  Print handouts  "})
	require.NoError(t, err)
	require.Equal(t, "Print handouts", todo.Text)
	require.Equal(t, "teacher", todo.Assignee)
	require.False(t, todo.Completed)

	todo, err = svc.Create(ctx, "teacher", CreateTodoRequest{Text: "Book lab", Assignee: "ms-tanaka"})
	require.NoError(t, err)
	require.Equal(t, "ms-tanaka", todo.Assignee)
}

func TestTodoCreateRequiresText(t *testing.T) {
	svc := NewTodoService(store.NewMemoryStore(nil), nil, nil)
	_, err := svc.Create(context.Background(), "teacher", CreateTodoRequest{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTodoPendingFiltersCompleted(t *testing.T) {
	svc := NewTodoService(store.NewMemoryStore(nil), nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, "teacher", CreateTodoRequest{Text: "Grade quizzes"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "teacher", CreateTodoRequest{Text: "Call parents"})
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "Call parents", pending[0].Text)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestTodoDelete(t *testing.T) {
	svc := NewTodoService(store.NewMemoryStore(nil), nil, nil)
	ctx := context.Background()

	todo, err := svc.Create(ctx, "teacher", CreateTodoRequest{Text: "Laminate posters"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, todo.ID))

	err = svc.Delete(ctx, todo.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
