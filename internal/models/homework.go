package models

import "time"

// Homework tracks one assignment for a class. Completion is set membership;
// pending count is roster size minus the completed set size.
type Homework struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	DueDate             string    `json:"dueDate"`
	ClassID             string    `json:"classId"`
	CompletedStudentIDs []int64   `json:"completedStudentIds"`
	CreatedAt           time.Time `json:"createdAt"`
}

// IsCompletedBy reports set membership for the given student.
func (h Homework) IsCompletedBy(studentID int64) bool {
	for _, id := range h.CompletedStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// WatchlistEntry ranks a student by outstanding homework count.
type WatchlistEntry struct {
	StudentID    int64  `json:"student_id"`
	StudentName  string `json:"student_name"`
	MissingCount int    `json:"missing_count"`
}
