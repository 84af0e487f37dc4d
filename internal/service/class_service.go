package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
	"github.com/classdesk/classdesk-api/pkg/export"
)

const defaultPerformance = 70

// CreateClassRequest describes a new class section.
type CreateClassRequest struct {
	Name   string               `json:"name" validate:"required"`
	Layout models.SeatingLayout `json:"layout" validate:"omitempty,oneof=u-shape rows groups grid"`
}

// UpdateClassRequest renames a class or changes its layout.
type UpdateClassRequest struct {
	Name   string               `json:"name" validate:"omitempty"`
	Layout models.SeatingLayout `json:"layout" validate:"omitempty,oneof=u-shape rows groups grid"`
}

// AddStudentRequest appends one roster entry.
type AddStudentRequest struct {
	Name        string `json:"name" validate:"required"`
	Performance *int   `json:"performance" validate:"omitempty,min=0,max=100"`
}

// UpdateStudentRequest edits a roster entry in place.
type UpdateStudentRequest struct {
	Name        string `json:"name" validate:"omitempty"`
	Performance *int   `json:"performance" validate:"omitempty,min=0,max=100"`
}

// ImportRequest carries pasted bulk text, one item per line.
type ImportRequest struct {
	Text string `json:"text" validate:"required"`
}

// ClassService manages class sections and their rosters.
type ClassService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
	xp        *XPService
	now       func() time.Time
}

// NewClassService creates a class service instance.
func NewClassService(st store.Store, validate *validator.Validate, xp *XPService, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{store: st, validator: validate, logger: logger, xp: xp, now: time.Now}
}

// List returns every class section.
func (s *ClassService) List(ctx context.Context, userID string) ([]models.ClassSection, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return doc.Classes, nil
}

// Get returns one class section.
func (s *ClassService) Get(ctx context.Context, userID, classID string) (*models.ClassSection, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

// Create appends a new, empty class section.
func (s *ClassService) Create(ctx context.Context, userID string, req CreateClassRequest) (*models.ClassSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	layout := req.Layout
	if layout == "" {
		layout = models.LayoutGrid
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := models.ClassSection{
		ID:       fmt.Sprintf("c%d", s.now().UnixMilli()),
		Name:     req.Name,
		Layout:   layout,
		Students: []models.Student{},
	}
	doc.Classes = append(doc.Classes, class)
	if err := s.persistClasses(ctx, userID, doc); err != nil {
		return nil, err
	}
	return &class, nil
}

// Update renames a class and/or changes its layout.
func (s *ClassService) Update(ctx context.Context, userID, classID string, req UpdateClassRequest) (*models.ClassSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if req.Name != "" {
		class.Name = req.Name
	}
	if req.Layout != "" {
		class.Layout = req.Layout
	}
	if err := s.persistClasses(ctx, userID, doc); err != nil {
		return nil, err
	}
	updated := *class
	return &updated, nil
}

// Delete removes a class section. Attendance history and curriculum entries
// keyed by the id are left in place; they are unreachable but harmless and
// match the store's overwrite-only lifecycle.
func (s *ClassService) Delete(ctx context.Context, userID, classID string) error {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	kept := doc.Classes[:0]
	found := false
	for _, class := range doc.Classes {
		if class.ID == classID {
			found = true
			continue
		}
		kept = append(kept, class)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	doc.Classes = kept
	return s.persistClasses(ctx, userID, doc)
}

// AddStudent appends one student to the roster.
func (s *ClassService) AddStudent(ctx context.Context, userID, classID string, req AddStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	performance := defaultPerformance
	if req.Performance != nil {
		performance = *req.Performance
	}
	student := models.Student{
		ID:          s.now().UnixMilli(),
		Name:        strings.TrimSpace(req.Name),
		Performance: performance,
	}
	class.Students = append(class.Students, student)
	if err := s.persistClasses(ctx, userID, doc); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateStudent edits a roster entry. Performance writes overwrite; no
// history is retained.
func (s *ClassService) UpdateStudent(ctx context.Context, userID, classID string, studentID int64, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	student := class.FindStudent(studentID)
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if req.Name != "" {
		student.Name = req.Name
	}
	if req.Performance != nil {
		student.Performance = *req.Performance
	}
	if err := s.persistClasses(ctx, userID, doc); err != nil {
		return nil, err
	}
	updated := *student
	return &updated, nil
}

// RemoveStudent drops a roster entry.
func (s *ClassService) RemoveStudent(ctx context.Context, userID, classID string, studentID int64) error {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	class := doc.Class(classID)
	if class == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	kept := class.Students[:0]
	found := false
	for _, student := range class.Students {
		if student.ID == studentID {
			found = true
			continue
		}
		kept = append(kept, student)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	class.Students = kept
	return s.persistClasses(ctx, userID, doc)
}

// ImportStudents appends one student per non-blank pasted line, quotes
// stripped, performance defaulted.
func (s *ClassService) ImportStudents(ctx context.Context, userID, classID string, req ImportRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	class := doc.Class(classID)
	if class == nil {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	base := s.now().UnixMilli()
	added := 0
	for _, line := range strings.Split(req.Text, "\n") {
		name := strings.Trim(strings.TrimSpace(line), `"'`)
		if name == "" {
			continue
		}
		class.Students = append(class.Students, models.Student{
			ID:          base + int64(added),
			Name:        name,
			Performance: defaultPerformance,
		})
		added++
	}
	if added == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no student names found in import text")
	}
	if err := s.persistClasses(ctx, userID, doc); err != nil {
		return 0, err
	}
	s.xp.Award(ctx, userID, 15)
	return added, nil
}

// ImportClasses creates one empty class per non-blank pasted line.
func (s *ClassService) ImportClasses(ctx context.Context, userID string, req ImportRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	base := s.now().UnixMilli()
	added := 0
	for _, line := range strings.Split(req.Text, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		doc.Classes = append(doc.Classes, models.ClassSection{
			ID:       fmt.Sprintf("c%d", base+int64(added)),
			Name:     name,
			Layout:   models.LayoutGrid,
			Students: []models.Student{},
		})
		added++
	}
	if added == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no class names found in import text")
	}
	if err := s.persistClasses(ctx, userID, doc); err != nil {
		return 0, err
	}
	s.xp.Award(ctx, userID, 15)
	return added, nil
}

// ImportRosterXLSX reads student names (and optional performance column)
// from the first sheet of an uploaded workbook.
func (s *ClassService) ImportRosterXLSX(ctx context.Context, userID, classID string, r io.Reader) (int, error) {
	rows, err := export.ReadRosterSheet(r)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not read workbook")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	class := doc.Class(classID)
	if class == nil {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	base := s.now().UnixMilli()
	added := 0
	for _, row := range rows {
		performance := defaultPerformance
		if row.Performance != nil {
			performance = *row.Performance
		}
		class.Students = append(class.Students, models.Student{
			ID:          base + int64(added),
			Name:        row.Name,
			Performance: performance,
		})
		added++
	}
	if added == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "workbook contained no student rows")
	}
	if err := s.persistClasses(ctx, userID, doc); err != nil {
		return 0, err
	}
	s.xp.Award(ctx, userID, 15)
	return added, nil
}

func (s *ClassService) persistClasses(ctx context.Context, userID string, doc *models.UserDocument) error {
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldClasses: doc.Classes,
	})
}
