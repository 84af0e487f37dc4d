package models

import (
	"encoding/json"
	"fmt"
)

// Top-level field names of the private user document. Merge writes address
// these names; snapshots are diff-applied by them.
const (
	FieldPassword          = "password"
	FieldClasses           = "classes"
	FieldSchedule          = "schedule"
	FieldAttendanceHistory = "attendanceHistory"
	FieldSeatingChart      = "seatingChart"
	FieldHomeworkList      = "homeworkList"
	FieldCurriculum        = "curriculum"
	FieldTermSettings      = "termSettings"
	FieldJournalEntries    = "journalEntries"
	FieldQuickNotes        = "quickNotes"
	FieldTeacherXP         = "teacherXP"
)

// UserDocument is the single logical record holding all private teacher
// state. Every field is optional in storage; absent fields substitute the
// zero values produced by NewUserDocument.
type UserDocument struct {
	Password          string              `json:"password,omitempty"`
	Classes           []ClassSection      `json:"classes"`
	Schedule          WeekSchedule        `json:"schedule"`
	AttendanceHistory AttendanceHistory   `json:"attendanceHistory"`
	SeatingChart      map[string][]string `json:"seatingChart"`
	HomeworkList      []Homework          `json:"homeworkList"`
	Curriculum        Curriculum          `json:"curriculum"`
	TermSettings      TermSettings        `json:"termSettings"`
	JournalEntries    []JournalEntry      `json:"journalEntries"`
	QuickNotes        string              `json:"quickNotes"`
	TeacherXP         int                 `json:"teacherXP"`
}

// ScheduleImages is the secondary record holding the large base64 image
// payloads, kept apart so they do not bloat the primary document.
type ScheduleImages struct {
	Weekly string `db:"weekly" json:"weekly,omitempty"`
	Yearly string `db:"yearly" json:"yearly,omitempty"`
}

// NewUserDocument returns a document with every collection initialised.
func NewUserDocument() *UserDocument {
	return &UserDocument{
		Classes:           []ClassSection{},
		Schedule:          WeekSchedule{},
		AttendanceHistory: AttendanceHistory{},
		SeatingChart:      map[string][]string{},
		HomeworkList:      []Homework{},
		Curriculum:        Curriculum{},
		JournalEntries:    []JournalEntry{},
	}
}

// Class returns the class section with the given id, or nil.
func (d *UserDocument) Class(id string) *ClassSection {
	for i := range d.Classes {
		if d.Classes[i].ID == id {
			return &d.Classes[i]
		}
	}
	return nil
}

// ApplyField diff-applies one raw field value into the document by name.
// Unknown field names are ignored so that newer writers do not break older
// readers.
func (d *UserDocument) ApplyField(name string, raw json.RawMessage) error {
	var err error
	switch name {
	case FieldPassword:
		err = json.Unmarshal(raw, &d.Password)
	case FieldClasses:
		err = json.Unmarshal(raw, &d.Classes)
	case FieldSchedule:
		err = json.Unmarshal(raw, &d.Schedule)
	case FieldAttendanceHistory:
		err = json.Unmarshal(raw, &d.AttendanceHistory)
	case FieldSeatingChart:
		err = json.Unmarshal(raw, &d.SeatingChart)
	case FieldHomeworkList:
		err = json.Unmarshal(raw, &d.HomeworkList)
	case FieldCurriculum:
		err = json.Unmarshal(raw, &d.Curriculum)
	case FieldTermSettings:
		err = json.Unmarshal(raw, &d.TermSettings)
	case FieldJournalEntries:
		err = json.Unmarshal(raw, &d.JournalEntries)
	case FieldQuickNotes:
		err = json.Unmarshal(raw, &d.QuickNotes)
	case FieldTeacherXP:
		err = json.Unmarshal(raw, &d.TeacherXP)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply field %s: %w", name, err)
	}
	return nil
}

// FieldValue extracts the named field for a merge write.
func (d *UserDocument) FieldValue(name string) (interface{}, bool) {
	switch name {
	case FieldPassword:
		return d.Password, true
	case FieldClasses:
		return d.Classes, true
	case FieldSchedule:
		return d.Schedule, true
	case FieldAttendanceHistory:
		return d.AttendanceHistory, true
	case FieldSeatingChart:
		return d.SeatingChart, true
	case FieldHomeworkList:
		return d.HomeworkList, true
	case FieldCurriculum:
		return d.Curriculum, true
	case FieldTermSettings:
		return d.TermSettings, true
	case FieldJournalEntries:
		return d.JournalEntries, true
	case FieldQuickNotes:
		return d.QuickNotes, true
	case FieldTeacherXP:
		return d.TeacherXP, true
	default:
		return nil, false
	}
}

// Clone deep-copies the document via JSON round-trip. Snapshots handed to
// subscribers and callers must never alias the store's internal state.
func (d *UserDocument) Clone() *UserDocument {
	raw, err := json.Marshal(d)
	if err != nil {
		return NewUserDocument()
	}
	copied := NewUserDocument()
	if err := json.Unmarshal(raw, copied); err != nil {
		return NewUserDocument()
	}
	return copied
}
