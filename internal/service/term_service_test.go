package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
)

func TestResolveTermWeek(t *testing.T) {
	settings := models.TermSettings{
		T1: "2026-01-05",
		T2: "2026-04-06",
		T3: "2026-09-07",
	}

	tests := []struct {
		name     string
		dateKey  string
		settings models.TermSettings
		want     models.TermPosition
	}{
		{
			name:     "empty settings degrade to t1 week 1",
			dateKey:  "2026-03-15",
			settings: models.TermSettings{},
			want:     models.TermPosition{Term: models.Term1, Week: 1},
		},
		{
			name:     "date before every term stays in t1 week 1",
			dateKey:  "2025-12-25",
			settings: settings,
			want:     models.TermPosition{Term: models.Term1, Week: 1},
		},
		{
			name:     "term start date is week 1",
			dateKey:  "2026-01-05",
			settings: settings,
			want:     models.TermPosition{Term: models.Term1, Week: 1},
		},
		{
			name:     "seventh day still week 1",
			dateKey:  "2026-01-12",
			settings: settings,
			want:     models.TermPosition{Term: models.Term1, Week: 1},
		},
		{
			name:     "eighth day rolls to week 2",
			dateKey:  "2026-01-13",
			settings: settings,
			want:     models.TermPosition{Term: models.Term1, Week: 2},
		},
		{
			name:     "t2 start switches terms and resets the week",
			dateKey:  "2026-04-06",
			settings: settings,
			want:     models.TermPosition{Term: models.Term2, Week: 1},
		},
		{
			name:     "mid t3",
			dateKey:  "2026-09-22",
			settings: settings,
			want:     models.TermPosition{Term: models.Term3, Week: 3},
		},
		{
			name:     "malformed start date falls back to week 1",
			dateKey:  "2026-03-15",
			settings: models.TermSettings{T1: "05-01-2026"},
			want:     models.TermPosition{Term: models.Term1, Week: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveTermWeek(tc.dateKey, tc.settings))
		})
	}
}

func TestResolveTermWeekIsIdempotent(t *testing.T) {
	settings := models.TermSettings{T1: "2026-01-05"}
	first := ResolveTermWeek("2026-02-10", settings)
	second := ResolveTermWeek("2026-02-10", settings)
	require.Equal(t, first, second)
}

func TestTermServiceUpdateAndResolve(t *testing.T) {
	svc := NewTermService(store.NewMemoryStore(nil), nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "teacher", UpdateTermSettingsRequest{T1: "not-a-date"})
	require.Error(t, err)

	settings, err := svc.Update(ctx, "teacher", UpdateTermSettingsRequest{T1: "2026-01-05", T2: "2026-04-06"})
	require.NoError(t, err)
	require.Equal(t, "2026-01-05", settings.T1)

	stored, err := svc.Settings(ctx, "teacher")
	require.NoError(t, err)
	require.Equal(t, settings, stored)

	pos, err := svc.Resolve(ctx, "teacher", "2026-04-20")
	require.NoError(t, err)
	require.Equal(t, models.TermPosition{Term: models.Term2, Week: 2}, pos)
}
