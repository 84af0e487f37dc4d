package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// nextAttendanceStatus advances the cyclic toggle. An unrecorded student
// reads as present, so the first tap marks the deviation (absent) and
// repeated taps walk absent -> late -> present.
func nextAttendanceStatus(current models.AttendanceStatus) models.AttendanceStatus {
	switch current {
	case models.StatusAbsent:
		return models.StatusLate
	case models.StatusLate:
		return models.StatusPresent
	default:
		return models.StatusAbsent
	}
}

// AttendanceService maintains per-class, per-date attendance marks and the
// statistics derived from them. Mutations are optimistic: the snapshot
// changes and the caller gets the new status before the durable write lands.
type AttendanceService struct {
	store  store.Store
	logger *zap.Logger
	xp     *XPService
}

// NewAttendanceService creates an attendance service instance.
func NewAttendanceService(st store.Store, xp *XPService, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{store: st, logger: logger, xp: xp}
}

// History returns the recorded buckets for one class and date.
func (s *AttendanceService) History(ctx context.Context, userID, classID, dateKey string) (map[string]models.AttendanceStatus, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc.Class(classID) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	bucket := map[string]models.AttendanceStatus{}
	if byDate, ok := doc.AttendanceHistory[classID]; ok {
		for studentID, status := range byDate[dateKey] {
			bucket[studentID] = status
		}
	}
	return bucket, nil
}

// Toggle advances the student's status for the date and returns the new
// value immediately, without waiting on persistence.
func (s *AttendanceService) Toggle(ctx context.Context, userID, classID, dateKey, studentID string) (models.AttendanceStatus, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return "", err
	}
	if doc.Class(classID) == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	current := doc.AttendanceHistory.StatusFor(classID, dateKey, studentID)
	next := nextAttendanceStatus(current)
	doc.AttendanceHistory.Set(classID, dateKey, studentID, next)

	if err := s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldAttendanceHistory: doc.AttendanceHistory,
	}); err != nil {
		return "", err
	}
	return next, nil
}

// MarkAllPresent overwrites the per-date bucket for the current roster.
// Marks for students no longer on the roster are preserved untouched.
func (s *AttendanceService) MarkAllPresent(ctx context.Context, userID, classID, dateKey string) error {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	class := doc.Class(classID)
	if class == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	for _, student := range class.Students {
		doc.AttendanceHistory.Set(classID, dateKey, studentKey(student.ID), models.StatusPresent)
	}

	if err := s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldAttendanceHistory: doc.AttendanceHistory,
	}); err != nil {
		return err
	}
	s.xp.Award(ctx, userID, 5)
	return nil
}

// Rate summarises one student's attendance across every recorded date for
// the class. Present counts 1.0, late 0.5; a student with no marks at all
// scores 100, carrying no negative signal.
func (s *AttendanceService) Rate(ctx context.Context, userID, classID, studentID string) (models.AttendanceRate, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return models.AttendanceRate{}, err
	}
	return computeAttendanceRate(doc.AttendanceHistory, classID, studentID), nil
}

func computeAttendanceRate(history models.AttendanceHistory, classID, studentID string) models.AttendanceRate {
	total := 0
	presentDays := 0.0
	for _, byStudent := range history[classID] {
		status, ok := byStudent[studentID]
		if !ok {
			continue
		}
		total++
		switch status {
		case models.StatusPresent:
			presentDays += 1.0
		case models.StatusLate:
			presentDays += 0.5
		}
	}
	if total == 0 {
		return models.AttendanceRate{Rate: 100, TotalDaysRecorded: 0}
	}
	return models.AttendanceRate{
		Rate:              int(math.Round(100 * presentDays / float64(total))),
		TotalDaysRecorded: total,
	}
}

// AbsenteesOn lists the students explicitly marked absent for the date.
func (s *AttendanceService) AbsenteesOn(ctx context.Context, userID, classID, dateKey string) ([]models.Student, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	var absentees []models.Student
	for _, student := range class.Students {
		if doc.AttendanceHistory.StatusFor(classID, dateKey, studentKey(student.ID)) == models.StatusAbsent {
			absentees = append(absentees, student)
		}
	}
	return absentees, nil
}
