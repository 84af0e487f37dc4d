package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// SaveLessonPlanRequest writes the plan for one (class, term, week) slot.
type SaveLessonPlanRequest struct {
	Term      models.TermID `json:"term" validate:"required,oneof=t1 t2 t3"`
	Week      int           `json:"week" validate:"required,min=1"`
	Topic     string        `json:"topic" validate:"omitempty"`
	Materials string        `json:"materials" validate:"omitempty"`
	DateLabel string        `json:"dateLabel" validate:"omitempty"`
}

// CurriculumService manages per-class lesson plans keyed by term and week.
type CurriculumService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCurriculumService creates a curriculum service instance.
func NewCurriculumService(st store.Store, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurriculumService{store: st, validator: validate, logger: logger}
}

// Plan returns the stored plan for a slot. A never-written slot reads as
// an empty plan carrying the requested week number.
func (s *CurriculumService) Plan(ctx context.Context, userID, classID string, term models.TermID, week int) (models.LessonPlan, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return models.LessonPlan{}, err
	}
	if doc.Class(classID) == nil {
		return models.LessonPlan{}, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return doc.Curriculum.Plan(classID, term, week), nil
}

// TermPlans returns the stored slots for one class and term, keyed by week.
func (s *CurriculumService) TermPlans(ctx context.Context, userID, classID string, term models.TermID) (map[int]models.LessonPlan, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Class(classID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if byTerm, ok := doc.Curriculum[classID]; ok {
		if byWeek, ok := byTerm[string(term)]; ok {
			return byWeek, nil
		}
	}
	return map[int]models.LessonPlan{}, nil
}

// Save overwrites the plan for a slot.
func (s *CurriculumService) Save(ctx context.Context, userID, classID string, req SaveLessonPlanRequest) (models.LessonPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.LessonPlan{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson plan payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return models.LessonPlan{}, err
	}
	if doc.Class(classID) == nil {
		return models.LessonPlan{}, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if doc.Curriculum == nil {
		doc.Curriculum = models.Curriculum{}
	}
	plan := models.LessonPlan{
		Week:      req.Week,
		Topic:     req.Topic,
		Materials: req.Materials,
		DateLabel: req.DateLabel,
	}
	doc.Curriculum.SetPlan(classID, req.Term, plan)
	err = s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldCurriculum: doc.Curriculum,
	})
	if err != nil {
		return models.LessonPlan{}, err
	}
	return plan, nil
}
