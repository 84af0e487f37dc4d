// Package dto defines response shapes composed from multiple services.
package dto

import (
	"github.com/classdesk/classdesk-api/internal/models"
)

// DashboardResponse is the composed morning view: everything the teacher
// needs at a glance, assembled from the individual services and cached
// briefly.
type DashboardResponse struct {
	DateKey       string                   `json:"dateKey"`
	Term          models.TermPosition      `json:"term"`
	TodaySchedule []models.ScheduleEntry   `json:"todaySchedule"`
	PendingTodos  int                      `json:"pendingTodos"`
	Attendance    []ClassAttendanceSummary `json:"attendance"`
	Watchlist     []models.WatchlistEntry  `json:"watchlist"`
	TeacherXP     int                      `json:"teacherXp"`
	QuickNotes    string                   `json:"quickNotes"`
}

// ClassAttendanceSummary condenses one class's marks for the day.
type ClassAttendanceSummary struct {
	ClassID   string `json:"classId"`
	ClassName string `json:"className"`
	Students  int    `json:"students"`
	Absent    int    `json:"absent"`
	Late      int    `json:"late"`
}

// StatusResponse reports liveness plus a metrics snapshot.
type StatusResponse struct {
	Status  string               `json:"status"`
	Offline bool                 `json:"offline"`
	Metrics models.SystemMetrics `json:"metrics"`
}
