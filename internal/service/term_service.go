package service

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

const dateKeyLayout = "2006-01-02"

// ResolveTermWeek locates a calendar date within the configured terms. It is
// pure and never fails: missing or malformed configuration degrades to week 1
// of term t1 so schedule displays never block on misconfiguration.
//
// Term selection compares YYYY-MM-DD strings, which orders correctly for ISO
// dates; the week number is a 1-based ceil of elapsed days over 7.
func ResolveTermWeek(dateKey string, settings models.TermSettings) models.TermPosition {
	term := models.Term1
	start := settings.T1
	if settings.T2 != "" && dateKey >= settings.T2 {
		term = models.Term2
		start = settings.T2
	}
	if settings.T3 != "" && dateKey >= settings.T3 {
		term = models.Term3
		start = settings.T3
	}

	week := 1
	if start != "" {
		startDate, errStart := time.Parse(dateKeyLayout, start)
		target, errTarget := time.Parse(dateKeyLayout, dateKey)
		if errStart == nil && errTarget == nil {
			days := target.Sub(startDate).Hours() / 24
			week = int(math.Ceil(days / 7))
			if week < 1 {
				week = 1
			}
		}
	}
	return models.TermPosition{Term: term, Week: week}
}

// UpdateTermSettingsRequest replaces the configured term start dates.
type UpdateTermSettingsRequest struct {
	T1 string `json:"t1" validate:"omitempty,datetime=2006-01-02"`
	T2 string `json:"t2" validate:"omitempty,datetime=2006-01-02"`
	T3 string `json:"t3" validate:"omitempty,datetime=2006-01-02"`
}

// TermService persists term settings and resolves dates against them.
type TermService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTermService creates a term service instance.
func NewTermService(st store.Store, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{store: st, validator: validate, logger: logger, now: time.Now}
}

// Settings returns the stored term configuration.
func (s *TermService) Settings(ctx context.Context, userID string) (models.TermSettings, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return models.TermSettings{}, err
	}
	return doc.TermSettings, nil
}

// Update validates and persists new term start dates.
func (s *TermService) Update(ctx context.Context, userID string, req UpdateTermSettingsRequest) (models.TermSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.TermSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term settings payload")
	}
	settings := models.TermSettings{T1: req.T1, T2: req.T2, T3: req.T3}
	if err := s.store.MergeWrite(ctx, userID, map[string]interface{}{models.FieldTermSettings: settings}); err != nil {
		return models.TermSettings{}, err
	}
	return settings, nil
}

// Resolve locates the given date (or today when empty) in the user's terms.
func (s *TermService) Resolve(ctx context.Context, userID, dateKey string) (models.TermPosition, error) {
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return models.TermPosition{}, err
	}
	if dateKey == "" {
		dateKey = s.now().UTC().Format(dateKeyLayout)
	}
	return ResolveTermWeek(dateKey, settings), nil
}
