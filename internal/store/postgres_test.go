package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/jobs"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := &PostgresStore{
		db:        sqlx.NewDb(db, "postgres"),
		logger:    zap.NewNop(),
		snapshots: make(map[string]*models.UserDocument),
		subs:      make(map[string]map[int]chan *models.UserDocument),
	}
	return store, mock
}

func TestPostgresLoadMapsFieldRows(t *testing.T) {
	store, mock := newMockStore(t)

	classes, err := json.Marshal([]models.ClassSection{{ID: "c7", Name: "J3 - Chemistry"}})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT field, value FROM user_documents`).
		WithArgs("teacher").
		WillReturnRows(sqlmock.NewRows([]string{"field", "value"}).
			AddRow(models.FieldClasses, classes).
			AddRow(models.FieldQuickNotes, []byte(`"projector cable"`)))

	doc, err := store.Load(context.Background(), "teacher")
	require.NoError(t, err)
	require.Len(t, doc.Classes, 1)
	require.Equal(t, "c7", doc.Classes[0].ID)
	require.Equal(t, "projector cable", doc.QuickNotes)
	require.NoError(t, mock.ExpectationsWereMet())

	// Second load is served from the snapshot without touching the db.
	again, err := store.Load(context.Background(), "teacher")
	require.NoError(t, err)
	require.Equal(t, doc.Classes, again.Classes)
}

func TestPostgresLoadSkipsCorruptField(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT field, value FROM user_documents`).
		WithArgs("teacher").
		WillReturnRows(sqlmock.NewRows([]string{"field", "value"}).
			AddRow(models.FieldClasses, []byte(`{"broken"`)).
			AddRow(models.FieldQuickNotes, []byte(`"ok"`)))

	doc, err := store.Load(context.Background(), "teacher")
	require.NoError(t, err)
	require.Empty(t, doc.Classes)
	require.Equal(t, "ok", doc.QuickNotes)
}

func TestPostgresLoadTranslatesDriverFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT field, value FROM user_documents`).
		WithArgs("teacher").
		WillReturnError(errors.New("connection refused"))

	_, err := store.Load(context.Background(), "teacher")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrBackendUnreachable.Code, appErrors.FromError(err).Code)
}

func TestPostgresLoadImagesNoRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(weekly, ''\)`).
		WithArgs("teacher").
		WillReturnRows(sqlmock.NewRows([]string{"weekly", "yearly"}))

	images, err := store.LoadImages(context.Background(), "teacher")
	require.NoError(t, err)
	require.Empty(t, images.Weekly)
	require.Empty(t, images.Yearly)
}

func TestPostgresMergeImagesUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO user_images`).
		WithArgs("teacher", "week-data", "year-data", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.MergeImages(context.Background(), "teacher", models.ScheduleImages{
		Weekly: "week-data",
		Yearly: "year-data",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListTodos(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, text, completed, assignee, created_at FROM shared_todos`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "completed", "assignee", "created_at"}).
			AddRow("t1", "Print handouts", false, "teacher", now).
			AddRow("t2", "Book lab", true, "ms-tanaka", now.Add(-time.Hour)))

	todos, err := store.ListTodos(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 2)
	require.Equal(t, "Print handouts", todos[0].Text)
	require.True(t, todos[1].Completed)
}

func TestPostgresToggleTodoNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE shared_todos SET completed`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "completed", "assignee", "created_at"}))

	_, err := store.ToggleTodo(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPostgresDeleteTodoNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM shared_todos`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteTodo(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPostgresListPosts(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, text, author, likes, created_at FROM shared_posts`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "author", "likes", "created_at"}).
			AddRow("p1", "Field trip forms due", "teacher", []byte("{teacher,ms-tanaka}"), now).
			AddRow("p2", "Gym is free Tuesday", "ms-tanaka", []byte("{}"), now.Add(-time.Hour)))

	posts, err := store.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, []string{"teacher", "ms-tanaka"}, posts[0].Likes)
	require.Empty(t, posts[1].Likes)
	require.True(t, posts[0].LikedBy("ms-tanaka"))
}

func TestPostgresToggleLikeReturnsUpdatedRow(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE shared_posts`).
		WithArgs("p1", "teacher").
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "author", "likes", "created_at"}).
			AddRow("p1", "Field trip forms due", "teacher", []byte("{teacher}"), now))

	post, err := store.ToggleLike(context.Background(), "p1", "teacher")
	require.NoError(t, err)
	require.Equal(t, []string{"teacher"}, post.Likes)
}

func TestPostgresToggleLikeNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE shared_posts`).
		WithArgs("missing", "teacher").
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "author", "likes", "created_at"}))

	_, err := store.ToggleLike(context.Background(), "missing", "teacher")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPostgresDeletePostNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM shared_posts`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeletePost(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPostgresHandleWriteJobUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO user_documents`).
		WithArgs("teacher", models.FieldQuickNotes, []byte(`"note"`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.handleWriteJob(context.Background(), jobs.Job{
		ID:   "job-1",
		Kind: "merge-field",
		Payload: fieldWrite{
			UserID: "teacher",
			Field:  models.FieldQuickNotes,
			Value:  json.RawMessage(`"note"`),
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresHandleWriteJobDropsOnPermissionDenied(t *testing.T) {
	store, mock := newMockStore(t)
	failures := 0
	store.onWriteFailure = func() { failures++ }

	mock.ExpectExec(`INSERT INTO user_documents`).
		WillReturnError(&pq.Error{Code: "42501"})

	err := store.handleWriteJob(context.Background(), jobs.Job{
		ID:   "job-1",
		Kind: "merge-field",
		Payload: fieldWrite{
			UserID: "teacher",
			Field:  models.FieldQuickNotes,
			Value:  json.RawMessage(`"note"`),
		},
	})
	// Permission denials are dropped, not retried.
	require.NoError(t, err)
	require.Equal(t, 1, failures)
}

func TestPostgresHandleWriteJobRetriesTransientFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO user_documents`).
		WillReturnError(errors.New("connection reset"))

	err := store.handleWriteJob(context.Background(), jobs.Job{
		ID:   "job-1",
		Kind: "merge-field",
		Payload: fieldWrite{
			UserID: "teacher",
			Field:  models.FieldQuickNotes,
			Value:  json.RawMessage(`"note"`),
		},
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrBackendUnreachable.Code, appErrors.FromError(err).Code)
}

func TestTranslateStoreError(t *testing.T) {
	permission := translateStoreError(&pq.Error{Code: "42501"}, "write")
	require.Equal(t, appErrors.ErrStorePermission.Code, appErrors.FromError(permission).Code)

	transient := translateStoreError(errors.New("dial tcp: refused"), "load")
	require.Equal(t, appErrors.ErrBackendUnreachable.Code, appErrors.FromError(transient).Code)
}
