package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/dto"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
)

// DashboardService composes the morning overview from the other services
// and memoises the result for a short window.
type DashboardService struct {
	store     store.Store
	terms     *TermService
	schedule  *ScheduleService
	todos     *TodoService
	homework  *HomeworkService
	cache     *CacheService
	cacheTTL  time.Duration
	watchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// DashboardServiceParams bundles constructor dependencies.
type DashboardServiceParams struct {
	Store         store.Store
	Terms         *TermService
	Schedule      *ScheduleService
	Todos         *TodoService
	Homework      *HomeworkService
	Cache         *CacheService
	CacheTTL      time.Duration
	WatchlistSize int
	Logger        *zap.Logger
}

// NewDashboardService creates a dashboard service instance.
func NewDashboardService(p DashboardServiceParams) *DashboardService {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	watchSize := p.WatchlistSize
	if watchSize <= 0 {
		watchSize = 8
	}
	return &DashboardService{
		store:     p.Store,
		terms:     p.Terms,
		schedule:  p.Schedule,
		todos:     p.Todos,
		homework:  p.Homework,
		cache:     p.Cache,
		cacheTTL:  p.CacheTTL,
		watchSize: watchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Overview composes the dashboard for today. Cache errors degrade to a
// fresh compose; they never fail the request.
func (s *DashboardService) Overview(ctx context.Context, userID string) (*dto.DashboardResponse, bool, error) {
	dateKey := s.now().Format(dateKeyLayout)
	cacheKey := fmt.Sprintf("dashboard:%s:%s", userID, dateKey)

	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	position, err := s.terms.Resolve(ctx, userID, dateKey)
	if err != nil {
		return nil, false, err
	}
	today, err := s.schedule.Today(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	pending, err := s.todos.Pending(ctx)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.DashboardResponse{
		DateKey:       dateKey,
		Term:          position,
		TodaySchedule: today,
		PendingTodos:  len(pending),
		Attendance:    summariseAttendance(doc, dateKey),
		TeacherXP:     doc.TeacherXP,
		QuickNotes:    doc.QuickNotes,
	}

	// Watchlist follows today's first scheduled class, falling back to
	// the first class in the roster.
	if classID := watchlistClass(doc, today); classID != "" {
		watchlist, err := s.homework.Watchlist(ctx, userID, classID, s.watchSize)
		if err != nil {
			return nil, false, err
		}
		resp.Watchlist = watchlist
	} else {
		resp.Watchlist = []models.WatchlistEntry{}
	}

	if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return resp, false, nil
}

// Invalidate drops today's cached dashboard for the user.
func (s *DashboardService) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s:*", userID)); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

func summariseAttendance(doc *models.UserDocument, dateKey string) []dto.ClassAttendanceSummary {
	summaries := make([]dto.ClassAttendanceSummary, 0, len(doc.Classes))
	for _, class := range doc.Classes {
		summary := dto.ClassAttendanceSummary{
			ClassID:   class.ID,
			ClassName: class.Name,
			Students:  len(class.Students),
		}
		marks := doc.AttendanceHistory[class.ID][dateKey]
		for _, status := range marks {
			switch status {
			case models.StatusAbsent:
				summary.Absent++
			case models.StatusLate:
				summary.Late++
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func watchlistClass(doc *models.UserDocument, today []models.ScheduleEntry) string {
	for _, entry := range today {
		if entry.ClassID != "" && doc.Class(entry.ClassID) != nil {
			return entry.ClassID
		}
	}
	if len(doc.Classes) > 0 {
		return doc.Classes[0].ID
	}
	return ""
}
