package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// FocusState is a point-in-time view of a classroom countdown timer.
type FocusState struct {
	Running   bool          `json:"running"`
	Remaining time.Duration `json:"remaining"`
	Duration  time.Duration `json:"duration"`
}

type focusTimer struct {
	duration  time.Duration
	remaining time.Duration
	running   bool
	startedAt time.Time
}

// FocusService runs per-user classroom countdown timers. Timers are
// ephemeral: they live in process memory and reset on restart.
type FocusService struct {
	mu     sync.Mutex
	timers map[string]*focusTimer
	logger *zap.Logger
	now    func() time.Time
}

// NewFocusService creates a focus timer service instance.
func NewFocusService(logger *zap.Logger) *FocusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FocusService{
		timers: make(map[string]*focusTimer),
		logger: logger,
		now:    time.Now,
	}
}

// Start begins a fresh countdown, replacing any previous timer.
func (s *FocusService) Start(userID string, duration time.Duration) (*FocusState, error) {
	if duration <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[userID] = &focusTimer{
		duration:  duration,
		remaining: duration,
		running:   true,
		startedAt: s.now(),
	}
	return s.stateLocked(userID), nil
}

// Pause freezes the countdown, preserving the remaining time exactly.
func (s *FocusService) Pause(userID string) (*FocusState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timer running")
	}
	if timer.running {
		timer.remaining = remainingAt(timer, s.now())
		timer.running = false
	}
	return s.stateLocked(userID), nil
}

// Resume continues a paused countdown from where it stopped.
func (s *FocusService) Resume(userID string) (*FocusState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timer running")
	}
	if !timer.running && timer.remaining > 0 {
		timer.startedAt = s.now()
		timer.running = true
	}
	return s.stateLocked(userID), nil
}

// Stop discards the timer entirely.
func (s *FocusService) Stop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, userID)
}

// State reports the current countdown. With no timer it returns a zeroed,
// stopped state rather than an error so the client can poll freely.
func (s *FocusService) State(userID string) *FocusState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(userID)
}

func (s *FocusService) stateLocked(userID string) *FocusState {
	timer, ok := s.timers[userID]
	if !ok {
		return &FocusState{}
	}
	remaining := timer.remaining
	running := timer.running
	if running {
		remaining = remainingAt(timer, s.now())
		if remaining == 0 {
			running = false
		}
	}
	return &FocusState{
		Running:   running,
		Remaining: remaining,
		Duration:  timer.duration,
	}
}

func remainingAt(timer *focusTimer, now time.Time) time.Duration {
	remaining := timer.remaining - now.Sub(timer.startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
