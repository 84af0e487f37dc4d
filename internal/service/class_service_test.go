package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

func newClassFixture(t *testing.T) *ClassService {
	t.Helper()
	st := store.NewMemoryStore(nil)
	xp := NewXPService(st, nil)
	return NewClassService(st, nil, xp, nil)
}

func TestClassListSeeded(t *testing.T) {
	svc := newClassFixture(t)
	classes, err := svc.List(context.Background(), "teacher")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, "c1", classes[0].ID)
	require.Len(t, classes[0].Students, 10)
}

func TestClassCreateUpdateDelete(t *testing.T) {
	svc := newClassFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "teacher", CreateClassRequest{Name: "J2 - World Geography", Layout: models.LayoutRows})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, models.LayoutRows, created.Layout)
	require.Empty(t, created.Students)

	updated, err := svc.Update(ctx, "teacher", created.ID, UpdateClassRequest{Name: "J2 - Geography"})
	require.NoError(t, err)
	require.Equal(t, "J2 - Geography", updated.Name)
	require.Equal(t, models.LayoutRows, updated.Layout, "layout survives a rename-only update")

	require.NoError(t, svc.Delete(ctx, "teacher", created.ID))

	_, err = svc.Get(ctx, "teacher", created.ID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassRosterMutations(t *testing.T) {
	svc := newClassFixture(t)
	ctx := context.Background()

	perf := 88
	student, err := svc.AddStudent(ctx, "teacher", "c1", AddStudentRequest{Name: "Hana Sato", Performance: &perf})
	require.NoError(t, err)
	require.Equal(t, 88, student.Performance)

	renamed, err := svc.UpdateStudent(ctx, "teacher", "c1", student.ID, UpdateStudentRequest{Name: "Hana S."})
	require.NoError(t, err)
	require.Equal(t, "Hana S.", renamed.Name)
	require.Equal(t, 88, renamed.Performance)

	require.NoError(t, svc.RemoveStudent(ctx, "teacher", "c1", student.ID))

	class, err := svc.Get(ctx, "teacher", "c1")
	require.NoError(t, err)
	require.Len(t, class.Students, 10)
}

func TestClassAddStudentDefaultsPerformance(t *testing.T) {
	svc := newClassFixture(t)
	student, err := svc.AddStudent(context.Background(), "teacher", "c1", AddStudentRequest{Name: "Ken Ito"})
	require.NoError(t, err)
	require.Equal(t, defaultPerformance, student.Performance)
}

func TestClassImportStudents(t *testing.T) {
	svc := newClassFixture(t)
	ctx := context.Background()

	added, err := svc.ImportStudents(ctx, "teacher", "c1", ImportRequest{
		Text: "\"Yuki Mori\"\n  Rin Abe  \n\n'Sora Kato'\n",
	})
	require.NoError(t, err)
	require.Equal(t, 3, added)

	class, err := svc.Get(ctx, "teacher", "c1")
	require.NoError(t, err)
	require.Len(t, class.Students, 13)
	last3 := class.Students[10:]
	require.Equal(t, "Yuki Mori", last3[0].Name)
	require.Equal(t, "Rin Abe", last3[1].Name)
	require.Equal(t, "Sora Kato", last3[2].Name)
	for _, student := range last3 {
		require.Equal(t, defaultPerformance, student.Performance)
	}
}

func TestClassImportStudentsBlankText(t *testing.T) {
	svc := newClassFixture(t)
	_, err := svc.ImportStudents(context.Background(), "teacher", "c1", ImportRequest{Text: "\n  \n"})
	require.Error(t, err)
}

func TestClassImportClasses(t *testing.T) {
	svc := newClassFixture(t)
	ctx := context.Background()

	added, err := svc.ImportClasses(ctx, "teacher", ImportRequest{Text: "J2 - Math\nJ3 - Science\n"})
	require.NoError(t, err)
	require.Equal(t, 2, added)

	classes, err := svc.List(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, classes, 3)
	require.Equal(t, "J2 - Math", classes[1].Name)
	require.Empty(t, classes[1].Students)
}

func TestClassImportRosterXLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Performance"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"Mio Tanaka", 91}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]interface{}{"Ren Suzuki"}))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	svc := newClassFixture(t)
	ctx := context.Background()

	added, err := svc.ImportRosterXLSX(ctx, "teacher", "c1", &buf)
	require.NoError(t, err)
	require.Equal(t, 2, added)

	class, err := svc.Get(ctx, "teacher", "c1")
	require.NoError(t, err)
	require.Len(t, class.Students, 12)
	require.Equal(t, "Mio Tanaka", class.Students[10].Name)
	require.Equal(t, 91, class.Students[10].Performance)
	require.Equal(t, defaultPerformance, class.Students[11].Performance)
}

func TestClassImportAssignsDistinctIDs(t *testing.T) {
	svc := newClassFixture(t)
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	ctx := context.Background()

	_, err := svc.ImportStudents(ctx, "teacher", "c1", ImportRequest{Text: "A\nB\nC"})
	require.NoError(t, err)

	class, err := svc.Get(ctx, "teacher", "c1")
	require.NoError(t, err)
	seen := map[int64]bool{}
	for _, student := range class.Students {
		require.False(t, seen[student.ID], "duplicate student id %d", student.ID)
		seen[student.ID] = true
	}
}
