package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

func newHomeworkFixture(t *testing.T) *HomeworkService {
	t.Helper()
	st := store.NewMemoryStore(nil)
	xp := NewXPService(st, nil)
	return NewHomeworkService(st, nil, xp, nil)
}

func TestHomeworkCreateAndList(t *testing.T) {
	svc := newHomeworkFixture(t)
	ctx := context.Background()

	hw, err := svc.Create(ctx, "teacher", CreateHomeworkRequest{
		Title:   "Chapter 4 worksheet",
		DueDate: "2026-03-09",
		ClassID: "c1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, hw.ID)
	require.Empty(t, hw.CompletedStudentIDs)

	list, err := svc.List(ctx, "teacher", "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Chapter 4 worksheet", list[0].Title)

	other, err := svc.List(ctx, "teacher", "c-other")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestHomeworkCreateUnknownClass(t *testing.T) {
	svc := newHomeworkFixture(t)
	_, err := svc.Create(context.Background(), "teacher", CreateHomeworkRequest{
		Title:   "Essay",
		ClassID: "missing",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestHomeworkToggleCompletionAndPending(t *testing.T) {
	svc := newHomeworkFixture(t)
	ctx := context.Background()

	hw, err := svc.Create(ctx, "teacher", CreateHomeworkRequest{Title: "Quiz prep", ClassID: "c1"})
	require.NoError(t, err)

	// Seeded roster has ten students.
	pending, err := svc.PendingCount(ctx, "teacher", hw.ID)
	require.NoError(t, err)
	require.Equal(t, 10, pending)

	updated, err := svc.ToggleCompletion(ctx, "teacher", hw.ID, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, updated.CompletedStudentIDs)

	_, err = svc.ToggleCompletion(ctx, "teacher", hw.ID, 2)
	require.NoError(t, err)

	pending, err = svc.PendingCount(ctx, "teacher", hw.ID)
	require.NoError(t, err)
	require.Equal(t, 8, pending)

	// Toggling again removes the student from the completion set.
	updated, err = svc.ToggleCompletion(ctx, "teacher", hw.ID, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, updated.CompletedStudentIDs)
}

func TestHomeworkDelete(t *testing.T) {
	svc := newHomeworkFixture(t)
	ctx := context.Background()

	hw, err := svc.Create(ctx, "teacher", CreateHomeworkRequest{Title: "Reading log", ClassID: "c1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "teacher", hw.ID))

	err = svc.Delete(ctx, "teacher", hw.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBuildWatchlist(t *testing.T) {
	class := &models.ClassSection{
		ID: "c1",
		Students: []models.Student{
			{ID: 1, Name: "Alex"},
			{ID: 2, Name: "Sam"},
			{ID: 3, Name: "Taylor"},
		},
	}
	homework := []models.Homework{
		{ID: "h1", ClassID: "c1", CompletedStudentIDs: []int64{1, 3}},
		{ID: "h2", ClassID: "c1", CompletedStudentIDs: []int64{1}},
		{ID: "h3", ClassID: "c1", CompletedStudentIDs: []int64{1, 2, 3}},
		// Assignments in other classes never count against the roster.
		{ID: "h4", ClassID: "c9", CompletedStudentIDs: []int64{}},
	}

	entries := buildWatchlist(class, homework, 8)
	require.Len(t, entries, 2)
	require.Equal(t, int64(2), entries[0].StudentID)
	require.Equal(t, 2, entries[0].MissingCount)
	require.Equal(t, int64(3), entries[1].StudentID)
	require.Equal(t, 1, entries[1].MissingCount)
}

func TestBuildWatchlistLimitAndTies(t *testing.T) {
	class := &models.ClassSection{
		ID: "c1",
		Students: []models.Student{
			{ID: 1, Name: "A"},
			{ID: 2, Name: "B"},
			{ID: 3, Name: "C"},
		},
	}
	homework := []models.Homework{
		{ID: "h1", ClassID: "c1", CompletedStudentIDs: []int64{}},
	}

	entries := buildWatchlist(class, homework, 2)
	require.Len(t, entries, 2)
	// Equal counts keep roster order.
	require.Equal(t, int64(1), entries[0].StudentID)
	require.Equal(t, int64(2), entries[1].StudentID)
}

func TestBuildWatchlistAllCaughtUp(t *testing.T) {
	class := &models.ClassSection{
		ID:       "c1",
		Students: []models.Student{{ID: 1, Name: "A"}},
	}
	homework := []models.Homework{
		{ID: "h1", ClassID: "c1", CompletedStudentIDs: []int64{1}},
	}
	require.Empty(t, buildWatchlist(class, homework, 8))
}
