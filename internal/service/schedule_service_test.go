package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
)

func TestScheduleDaySortsByTime(t *testing.T) {
	svc := NewScheduleService(store.NewMemoryStore(nil), nil, nil)
	ctx := context.Background()

	_, err := svc.ReplaceDay(ctx, "teacher", "Tuesday", ReplaceDayRequest{
		Entries: []models.ScheduleEntry{
			{Period: "3", Time: "11:00 - 11:50", Name: "World History", ClassID: "c1"},
			{Period: "1", Time: "09:00 - 09:50", Name: "Homeroom"},
			{Period: "2", Time: "10:00 - 10:50", Name: "Geography"},
		},
	})
	require.NoError(t, err)

	entries, err := svc.Day(ctx, "teacher", time.Tuesday)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "Homeroom", entries[0].Name)
	require.Equal(t, "Geography", entries[1].Name)
	require.Equal(t, "World History", entries[2].Name)
}

func TestScheduleReplaceDayDefaultsType(t *testing.T) {
	svc := NewScheduleService(store.NewMemoryStore(nil), nil, nil)

	entries, err := svc.ReplaceDay(context.Background(), "teacher", "Wednesday", ReplaceDayRequest{
		Entries: []models.ScheduleEntry{
			{Time: "09:00", Name: "Morning gate duty", Type: models.EntryDuty},
			{Time: "10:00", Name: "History"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.EntryDuty, entries[0].Type)
	require.Equal(t, models.EntryLesson, entries[1].Type)
}

func TestScheduleReplaceDayRejectsWeekend(t *testing.T) {
	svc := NewScheduleService(store.NewMemoryStore(nil), nil, nil)
	_, err := svc.ReplaceDay(context.Background(), "teacher", "Saturday", ReplaceDayRequest{
		Entries: []models.ScheduleEntry{{Time: "09:00", Name: "Club"}},
	})
	require.Error(t, err)
}

func TestScheduleClearDay(t *testing.T) {
	svc := NewScheduleService(store.NewMemoryStore(nil), nil, nil)
	ctx := context.Background()

	// The seeded document ships with Monday lessons.
	entries, err := svc.Day(ctx, "teacher", time.Monday)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	require.NoError(t, svc.ClearDay(ctx, "teacher", "Monday"))

	entries, err = svc.Day(ctx, "teacher", time.Monday)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestScheduleTodayUsesCurrentWeekday(t *testing.T) {
	svc := NewScheduleService(store.NewMemoryStore(nil), nil, nil)
	// Pin the clock to a Monday so the seeded lessons show up.
	svc.now = func() time.Time { return time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC) }

	entries, err := svc.Today(context.Background(), "teacher")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestScheduleWeekendDayIsEmpty(t *testing.T) {
	svc := NewScheduleService(store.NewMemoryStore(nil), nil, nil)
	entries, err := svc.Day(context.Background(), "teacher", time.Sunday)
	require.NoError(t, err)
	require.Empty(t, entries)
}
