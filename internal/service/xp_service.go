package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
)

func studentKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// XPService accumulates the teacher's gamification points. Awards are
// best-effort side effects; failures are logged and never surfaced.
type XPService struct {
	store  store.Store
	logger *zap.Logger
}

// NewXPService creates an XP service instance.
func NewXPService(st store.Store, logger *zap.Logger) *XPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XPService{store: st, logger: logger}
}

// Award adds points to the teacher's running total.
func (s *XPService) Award(ctx context.Context, userID string, points int) {
	if s == nil || points <= 0 {
		return
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		s.logger.Warn("xp award skipped", zap.Error(err))
		return
	}
	if err := s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldTeacherXP: doc.TeacherXP + points,
	}); err != nil {
		s.logger.Warn("xp award failed", zap.Error(err))
	}
}

// Total returns the current XP balance.
func (s *XPService) Total(ctx context.Context, userID string) (int, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, err
	}
	return doc.TeacherXP, nil
}
