package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// ReplaceDayRequest swaps out one weekday's entries wholesale. Timetable
// rows carry no identity of their own, so edits replace the whole day.
type ReplaceDayRequest struct {
	Entries []models.ScheduleEntry `json:"entries" validate:"required,dive"`
}

// ScheduleService manages the recurring weekly timetable.
type ScheduleService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService creates a schedule service instance.
func NewScheduleService(st store.Store, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{store: st, validator: validate, logger: logger, now: time.Now}
}

// Week returns the full recurring timetable keyed by weekday.
func (s *ScheduleService) Week(ctx context.Context, userID string) (models.WeekSchedule, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Schedule == nil {
		return models.WeekSchedule{}, nil
	}
	return doc.Schedule, nil
}

// Day returns the entries for one weekday, sorted by start time. Weekend
// days resolve to an empty list rather than an error.
func (s *ScheduleService) Day(ctx context.Context, userID string, day time.Weekday) ([]models.ScheduleEntry, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := doc.Schedule[day.String()]
	if entries == nil {
		return []models.ScheduleEntry{}, nil
	}
	sortScheduleEntries(entries)
	return entries, nil
}

// Today resolves the current weekday and returns its entries.
func (s *ScheduleService) Today(ctx context.Context, userID string) ([]models.ScheduleEntry, error) {
	return s.Day(ctx, userID, s.now().Weekday())
}

// ReplaceDay overwrites one weekday's entries. Unknown entry types default
// to lesson; the day must be a school day.
func (s *ScheduleService) ReplaceDay(ctx context.Context, userID, day string, req ReplaceDayRequest) ([]models.ScheduleEntry, error) {
	if !isWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be Monday through Friday")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	entries := make([]models.ScheduleEntry, len(req.Entries))
	copy(entries, req.Entries)
	for i := range entries {
		if entries[i].Type == "" {
			entries[i].Type = models.EntryLesson
		}
	}
	sortScheduleEntries(entries)

	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Schedule == nil {
		doc.Schedule = models.WeekSchedule{}
	}
	doc.Schedule[day] = entries
	err = s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldSchedule: doc.Schedule,
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearDay removes every entry from one weekday.
func (s *ScheduleService) ClearDay(ctx context.Context, userID, day string) error {
	if !isWeekday(day) {
		return appErrors.Clone(appErrors.ErrValidation, "day must be Monday through Friday")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	if doc.Schedule == nil {
		return nil
	}
	doc.Schedule[day] = []models.ScheduleEntry{}
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldSchedule: doc.Schedule,
	})
}

func isWeekday(day string) bool {
	for _, weekday := range models.Weekdays {
		if weekday == day {
			return true
		}
	}
	return false
}

// sortScheduleEntries orders entries by start time. Times are "HH:MM"
// prefixed strings, so a lexicographic compare is chronological.
func sortScheduleEntries(entries []models.ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})
}
