package models

// ScheduleEntryType classifies schedule rows.
type ScheduleEntryType string

const (
	EntryLesson   ScheduleEntryType = "lesson"
	EntryDuty     ScheduleEntryType = "duty"
	EntryCleaning ScheduleEntryType = "cleaning"
	EntryWelcome  ScheduleEntryType = "welcome"
	EntryAlert    ScheduleEntryType = "alert"
)

// ScheduleEntry is a single timetable row. ClassID may be empty for
// non-class events such as duties.
type ScheduleEntry struct {
	Period  string            `json:"period"`
	Code    string            `json:"code"`
	Time    string            `json:"time"` // "HH:MM - HH:MM"
	Type    ScheduleEntryType `json:"type"`
	Name    string            `json:"name"`
	ClassID string            `json:"classId"`
}

// WeekSchedule maps weekday name ("Monday"...) to that day's entries.
// Edited as a whole-day replace.
type WeekSchedule map[string][]ScheduleEntry

// Weekdays is the canonical ordering used by schedule views.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
