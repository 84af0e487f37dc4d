package models

// AttendanceStatus is the per-student, per-date mark.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// AttendanceHistory maps classID -> dateKey (YYYY-MM-DD) -> studentID -> status.
// A missing entry reads as present; entries are created lazily on first toggle
// and only ever removed by overwriting the containing bucket.
type AttendanceHistory map[string]map[string]map[string]AttendanceStatus

// StatusFor returns the recorded status, defaulting to present when unset.
func (h AttendanceHistory) StatusFor(classID, dateKey, studentID string) AttendanceStatus {
	if byDate, ok := h[classID]; ok {
		if byStudent, ok := byDate[dateKey]; ok {
			if status, ok := byStudent[studentID]; ok {
				return status
			}
		}
	}
	return StatusPresent
}

// Set records a status, allocating intermediate maps as needed.
func (h AttendanceHistory) Set(classID, dateKey, studentID string, status AttendanceStatus) {
	byDate, ok := h[classID]
	if !ok {
		byDate = make(map[string]map[string]AttendanceStatus)
		h[classID] = byDate
	}
	byStudent, ok := byDate[dateKey]
	if !ok {
		byStudent = make(map[string]AttendanceStatus)
		byDate[dateKey] = byStudent
	}
	byStudent[studentID] = status
}

// AttendanceRate summarises a single student's attendance across every
// recorded date bucket for a class.
type AttendanceRate struct {
	Rate              int `json:"rate"`
	TotalDaysRecorded int `json:"total_days_recorded"`
}
