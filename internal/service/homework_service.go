package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// CreateHomeworkRequest describes a new assignment.
type CreateHomeworkRequest struct {
	Title   string `json:"title" validate:"required"`
	DueDate string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	ClassID string `json:"class_id" validate:"required"`
}

// HomeworkService tracks assignments and per-student completion sets, and
// derives the missing-assignment statistics behind the watchlist.
type HomeworkService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
	xp        *XPService
}

// NewHomeworkService creates a homework service instance.
func NewHomeworkService(st store.Store, validate *validator.Validate, xp *XPService, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{store: st, validator: validate, logger: logger, xp: xp}
}

// List returns homework, optionally filtered by class.
func (s *HomeworkService) List(ctx context.Context, userID, classID string) ([]models.Homework, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if classID == "" {
		return doc.HomeworkList, nil
	}
	filtered := []models.Homework{}
	for _, hw := range doc.HomeworkList {
		if hw.ClassID == classID {
			filtered = append(filtered, hw)
		}
	}
	return filtered, nil
}

// Create appends a new assignment with an empty completion set.
func (s *HomeworkService) Create(ctx context.Context, userID string, req CreateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Class(req.ClassID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	hw := models.Homework{
		ID:                  uuid.NewString(),
		Title:               req.Title,
		DueDate:             req.DueDate,
		ClassID:             req.ClassID,
		CompletedStudentIDs: []int64{},
		CreatedAt:           time.Now().UTC(),
	}
	doc.HomeworkList = append(doc.HomeworkList, hw)
	if err := s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldHomeworkList: doc.HomeworkList,
	}); err != nil {
		return nil, err
	}
	s.xp.Award(ctx, userID, 10)
	return &hw, nil
}

// Delete removes an assignment.
func (s *HomeworkService) Delete(ctx context.Context, userID, homeworkID string) error {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	kept := doc.HomeworkList[:0]
	found := false
	for _, hw := range doc.HomeworkList {
		if hw.ID == homeworkID {
			found = true
			continue
		}
		kept = append(kept, hw)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "homework not found")
	}
	doc.HomeworkList = kept
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldHomeworkList: doc.HomeworkList,
	})
}

// ToggleCompletion flips a student's membership in the completion set and
// returns the updated assignment.
func (s *HomeworkService) ToggleCompletion(ctx context.Context, userID, homeworkID string, studentID int64) (*models.Homework, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	var target *models.Homework
	for i := range doc.HomeworkList {
		if doc.HomeworkList[i].ID == homeworkID {
			target = &doc.HomeworkList[i]
			break
		}
	}
	if target == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
	}

	if target.IsCompletedBy(studentID) {
		kept := target.CompletedStudentIDs[:0]
		for _, id := range target.CompletedStudentIDs {
			if id != studentID {
				kept = append(kept, id)
			}
		}
		target.CompletedStudentIDs = kept
	} else {
		target.CompletedStudentIDs = append(target.CompletedStudentIDs, studentID)
	}

	if err := s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldHomeworkList: doc.HomeworkList,
	}); err != nil {
		return nil, err
	}
	updated := *target
	return &updated, nil
}

// PendingCount is the roster size minus the completion set size.
func (s *HomeworkService) PendingCount(ctx context.Context, userID, homeworkID string) (int, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, hw := range doc.HomeworkList {
		if hw.ID == homeworkID {
			class := doc.Class(hw.ClassID)
			if class == nil {
				return 0, nil
			}
			pending := len(class.Students) - len(hw.CompletedStudentIDs)
			if pending < 0 {
				pending = 0
			}
			return pending, nil
		}
	}
	return 0, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
}

// MissingCount counts assignments of the class the student has not completed.
func (s *HomeworkService) MissingCount(ctx context.Context, userID, classID string, studentID int64) (int, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	return missingCount(doc.HomeworkList, classID, studentID), nil
}

func missingCount(homework []models.Homework, classID string, studentID int64) int {
	count := 0
	for _, hw := range homework {
		if hw.ClassID == classID && !hw.IsCompletedBy(studentID) {
			count++
		}
	}
	return count
}

// Watchlist ranks students with outstanding assignments: top-K by missing
// count descending, ties broken by roster order. Counts are computed as
// plain values before sorting.
func (s *HomeworkService) Watchlist(ctx context.Context, userID, classID string, limit int) ([]models.WatchlistEntry, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return buildWatchlist(class, doc.HomeworkList, limit), nil
}

func buildWatchlist(class *models.ClassSection, homework []models.Homework, limit int) []models.WatchlistEntry {
	if limit <= 0 {
		limit = 8
	}
	entries := []models.WatchlistEntry{}
	for _, student := range class.Students {
		count := missingCount(homework, class.ID, student.ID)
		if count > 0 {
			entries = append(entries, models.WatchlistEntry{
				StudentID:    student.ID,
				StudentName:  student.Name,
				MissingCount: count,
			})
		}
	}
	// Stable sort preserves roster order among equal counts.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MissingCount > entries[j].MissingCount
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
