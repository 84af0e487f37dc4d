package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// SeatingChart is a layout-shaped arrangement of the roster. Each inner
// slice is one visual row of desks.
type SeatingChart struct {
	ClassID string               `json:"classId"`
	Layout  models.SeatingLayout `json:"layout"`
	Rows    [][]models.Student   `json:"rows"`
}

// SaveSeatingRequest stores a manual desk order for a class.
type SaveSeatingRequest struct {
	Order []int64 `json:"order" validate:"required,min=1"`
}

// SeatingService derives seating charts from a class roster and layout. A
// manually saved order takes precedence over roster order.
type SeatingService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSeatingService creates a seating service instance.
func NewSeatingService(st store.Store, validate *validator.Validate, logger *zap.Logger) *SeatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatingService{store: st, validator: validate, logger: logger}
}

// Chart arranges the roster according to the class layout. Students keep
// roster order unless a manual order was saved for the class; saved ids
// that no longer exist in the roster are skipped.
func (s *SeatingService) Chart(ctx context.Context, userID, classID string) (*SeatingChart, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	seated := orderStudents(class.Students, doc.SeatingChart[classID])
	return &SeatingChart{
		ClassID: classID,
		Layout:  class.Layout,
		Rows:    arrangeSeats(class.Layout, seated),
	}, nil
}

// Save stores a manual desk order for a class. Every id must belong to
// the roster.
func (s *SeatingService) Save(ctx context.Context, userID, classID string, req SaveSeatingRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seating payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	class := doc.Class(classID)
	if class == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	order := make([]string, 0, len(req.Order))
	for _, id := range req.Order {
		if class.FindStudent(id) == nil {
			return appErrors.Clone(appErrors.ErrValidation, "seating order references unknown student")
		}
		order = append(order, strconv.FormatInt(id, 10))
	}
	if doc.SeatingChart == nil {
		doc.SeatingChart = map[string][]string{}
	}
	doc.SeatingChart[classID] = order
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldSeatingChart: doc.SeatingChart,
	})
}

// Reset drops the manual order so the chart reverts to roster order.
func (s *SeatingService) Reset(ctx context.Context, userID, classID string) error {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := doc.SeatingChart[classID]; !ok {
		return nil
	}
	delete(doc.SeatingChart, classID)
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldSeatingChart: doc.SeatingChart,
	})
}

// orderStudents applies a saved id order, appending any roster members the
// saved order does not mention.
func orderStudents(students []models.Student, saved []string) []models.Student {
	if len(saved) == 0 {
		return students
	}
	byID := make(map[string]models.Student, len(students))
	for _, student := range students {
		byID[strconv.FormatInt(student.ID, 10)] = student
	}
	ordered := make([]models.Student, 0, len(students))
	placed := make(map[string]bool, len(saved))
	for _, id := range saved {
		if student, ok := byID[id]; ok {
			ordered = append(ordered, student)
			placed[id] = true
		}
	}
	for _, student := range students {
		if !placed[strconv.FormatInt(student.ID, 10)] {
			ordered = append(ordered, student)
		}
	}
	return ordered
}

func arrangeSeats(layout models.SeatingLayout, students []models.Student) [][]models.Student {
	if len(students) == 0 {
		return [][]models.Student{}
	}
	switch layout {
	case models.LayoutUShape:
		return arrangeUShape(students)
	case models.LayoutRows:
		return chunkSeats(students, 4)
	case models.LayoutGroups:
		return chunkSeats(students, 5)
	default:
		return chunkSeats(students, 6)
	}
}

// arrangeUShape splits the roster into a left wing, a base, and a right
// wing so the chart renders as three sides of a rectangle.
func arrangeUShape(students []models.Student) [][]models.Student {
	side := len(students) / 3
	if side == 0 {
		return [][]models.Student{students}
	}
	left := students[:side]
	base := students[side : len(students)-side]
	right := students[len(students)-side:]
	return [][]models.Student{left, base, right}
}

func chunkSeats(students []models.Student, size int) [][]models.Student {
	rows := make([][]models.Student, 0, (len(students)+size-1)/size)
	for start := 0; start < len(students); start += size {
		end := start + size
		if end > len(students) {
			end = len(students)
		}
		rows = append(rows, students[start:end])
	}
	return rows
}
