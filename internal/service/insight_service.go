package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/genai"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// Admin command actions the assistant may return.
const (
	actionRenameClass  = "RENAME_CLASS"
	actionCreateClass  = "CREATE_CLASS"
	actionChangeLayout = "CHANGE_LAYOUT"
	actionAdvice       = "ADVICE"
)

// CreateJournalRequest adds a hand-written pedagogy note.
type CreateJournalRequest struct {
	Title    string `json:"title" validate:"required"`
	Category string `json:"category" validate:"omitempty"`
	Content  string `json:"content" validate:"required"`
}

// ResearchRequest asks the assistant for a pedagogy insight on a topic.
type ResearchRequest struct {
	Topic string `json:"topic" validate:"required"`
}

// AdminCommandRequest carries a natural-language instruction.
type AdminCommandRequest struct {
	Command string `json:"command" validate:"required"`
}

// ReportRequest shapes the generated progress comment: observed traits,
// the teacher's own comments, and the wording register. All optional.
type ReportRequest struct {
	Traits []string `json:"traits" validate:"omitempty,dive,required"`
	Notes  string   `json:"notes"`
	Tone   string   `json:"tone"`
}

// AdminCommandResult reports what the assistant did or said.
type AdminCommandResult struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// StudentReport is an assistant-written progress comment.
type StudentReport struct {
	StudentID int64  `json:"studentId"`
	Name      string `json:"name"`
	Report    string `json:"report"`
}

// InsightService owns the pedagogy journal and every assistant-backed
// feature. Completions for the same logical slot can finish out of order;
// only the most recently initiated one is kept.
type InsightService struct {
	store      store.Store
	ai         *genai.Client
	attendance *AttendanceService
	xp         *XPService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time

	seqMu sync.Mutex
	seq   map[string]uint64
}

// NewInsightService creates an insight service instance.
func NewInsightService(st store.Store, ai *genai.Client, attendance *AttendanceService, xp *XPService, validate *validator.Validate, logger *zap.Logger) *InsightService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{
		store:      st,
		ai:         ai,
		attendance: attendance,
		xp:         xp,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
		seq:        make(map[string]uint64),
	}
}

// Journal returns every entry, newest first as stored.
func (s *InsightService) Journal(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return doc.JournalEntries, nil
}

// AddJournalEntry prepends a hand-written note.
func (s *InsightService) AddJournalEntry(ctx context.Context, userID string, req CreateJournalRequest) (*models.JournalEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid journal payload")
	}
	category := req.Category
	if category == "" {
		category = "General"
	}
	entry := models.JournalEntry{
		ID:       fmt.Sprintf("j%d", s.now().UnixMilli()),
		Title:    req.Title,
		Category: category,
		Date:     s.now().UTC(),
		Content:  req.Content,
	}
	if err := s.prependJournal(ctx, userID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteJournalEntry removes a note.
func (s *InsightService) DeleteJournalEntry(ctx context.Context, userID, entryID string) error {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	kept := doc.JournalEntries[:0]
	found := false
	for _, entry := range doc.JournalEntries {
		if entry.ID == entryID {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "journal entry not found")
	}
	doc.JournalEntries = kept
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldJournalEntries: doc.JournalEntries,
	})
}

// Research asks the assistant for an insight on the topic and stores it as
// a journal entry. The assistant is asked for JSON, but a malformed reply
// degrades to storing the raw text under the topic's title.
func (s *InsightService) Research(ctx context.Context, userID string, req ResearchRequest) (*models.JournalEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid research payload")
	}
	token := s.begin("research:" + userID)

	prompt := fmt.Sprintf(
		`You are an educational research assistant. Write a concise, practical insight for a secondary-school teacher about: %q.
Respond with a JSON object: {"title": string, "category": string, "content": string}. The content should be 2-3 paragraphs of actionable advice.`,
		req.Topic)
	text, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if s.stale("research:"+userID, token) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "superseded by a newer research request")
	}

	entry := models.JournalEntry{
		ID:       fmt.Sprintf("j%d", s.now().UnixMilli()),
		Title:    "Insight: " + req.Topic,
		Category: "AI Research",
		Date:     s.now().UTC(),
		Content:  text,
	}
	if raw, ok := genai.ExtractJSON(text); ok {
		var parsed struct {
			Title    string `json:"title"`
			Category string `json:"category"`
			Content  string `json:"content"`
		}
		if json.Unmarshal([]byte(raw), &parsed) == nil && parsed.Content != "" {
			if parsed.Title != "" {
				entry.Title = parsed.Title
			}
			if parsed.Category != "" {
				entry.Category = parsed.Category
			}
			entry.Content = parsed.Content
		}
	}
	if err := s.prependJournal(ctx, userID, entry); err != nil {
		return nil, err
	}
	s.xp.Award(ctx, userID, 10)
	return &entry, nil
}

// Report writes a progress comment for one student, grounded in the
// roster performance score, the attendance record, and whatever traits,
// notes and tone the teacher selected.
func (s *InsightService) Report(ctx context.Context, userID, classID string, studentID int64, req ReportRequest) (*StudentReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	class := doc.Class(classID)
	if class == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	student := class.FindStudent(studentID)
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	rate, err := s.attendance.Rate(ctx, userID, classID, studentKey(studentID))
	if err != nil {
		return nil, err
	}

	slot := fmt.Sprintf("report:%s:%d", userID, studentID)
	token := s.begin(slot)
	prompt := fmt.Sprintf(
		`Write a short, constructive progress report (3-4 sentences) for the student %q in class %q.
Performance score: %d/100. Attendance rate: %d%% over %d recorded days.`,
		student.Name, class.Name, student.Performance, rate.Rate, rate.TotalDaysRecorded)
	if len(req.Traits) > 0 {
		prompt += fmt.Sprintf("\nSelected traits: %s.", strings.Join(req.Traits, ", "))
	}
	if req.Notes != "" {
		prompt += fmt.Sprintf("\nTeacher's specific comments: %q.", req.Notes)
	}
	if req.Tone != "" {
		prompt += fmt.Sprintf("\nTone: %s.", req.Tone)
	}
	prompt += "\nAddress the parents directly and end with one concrete suggestion."
	text, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if s.stale(slot, token) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "superseded by a newer report request")
	}
	return &StudentReport{StudentID: studentID, Name: student.Name, Report: text}, nil
}

// AdminCommand interprets a natural-language instruction. Structural
// commands mutate the class list; anything else comes back as advice.
func (s *InsightService) AdminCommand(ctx context.Context, userID string, req AdminCommandRequest) (*AdminCommandResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid command payload")
	}
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Classes))
	for _, class := range doc.Classes {
		names = append(names, fmt.Sprintf("%s (id %s)", class.Name, class.ID))
	}
	prompt := fmt.Sprintf(
		`You are the admin assistant for a classroom dashboard. Current classes: %s.
The teacher says: %q.
Respond with a JSON object, one of:
{"action":"RENAME_CLASS","classId":string,"name":string}
{"action":"CREATE_CLASS","name":string}
{"action":"CHANGE_LAYOUT","classId":string,"layout":"u-shape"|"rows"|"groups"|"grid"}
{"action":"ADVICE","message":string}
Use ADVICE when the request is not a structural change.`,
		strings.Join(names, ", "), req.Command)
	text, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, ok := genai.ExtractJSON(text)
	if !ok {
		return &AdminCommandResult{Action: actionAdvice, Message: text}, nil
	}
	var cmd struct {
		Action  string               `json:"action"`
		ClassID string               `json:"classId"`
		Name    string               `json:"name"`
		Layout  models.SeatingLayout `json:"layout"`
		Message string               `json:"message"`
	}
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		return &AdminCommandResult{Action: actionAdvice, Message: text}, nil
	}

	switch cmd.Action {
	case actionRenameClass:
		class := doc.Class(cmd.ClassID)
		if class == nil || cmd.Name == "" {
			return &AdminCommandResult{Action: actionAdvice, Message: "I could not find that class."}, nil
		}
		class.Name = cmd.Name
	case actionCreateClass:
		if cmd.Name == "" {
			return &AdminCommandResult{Action: actionAdvice, Message: "I need a name for the new class."}, nil
		}
		doc.Classes = append(doc.Classes, models.ClassSection{
			ID:       fmt.Sprintf("c%d", s.now().UnixMilli()),
			Name:     cmd.Name,
			Layout:   models.LayoutGrid,
			Students: []models.Student{},
		})
	case actionChangeLayout:
		class := doc.Class(cmd.ClassID)
		if class == nil || cmd.Layout == "" {
			return &AdminCommandResult{Action: actionAdvice, Message: "I could not find that class."}, nil
		}
		class.Layout = cmd.Layout
	case actionAdvice:
		return &AdminCommandResult{Action: actionAdvice, Message: cmd.Message}, nil
	default:
		return &AdminCommandResult{Action: actionAdvice, Message: text}, nil
	}

	err = s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldClasses: doc.Classes,
	})
	if err != nil {
		return nil, err
	}
	return &AdminCommandResult{Action: cmd.Action, Message: "Done."}, nil
}

// QuickNotes returns the free-form dashboard notepad.
func (s *InsightService) QuickNotes(ctx context.Context, userID string) (string, error) {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return "", err
	}
	return doc.QuickNotes, nil
}

// SaveQuickNotes overwrites the dashboard notepad.
func (s *InsightService) SaveQuickNotes(ctx context.Context, userID, notes string) error {
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldQuickNotes: notes,
	})
}

func (s *InsightService) prependJournal(ctx context.Context, userID string, entry models.JournalEntry) error {
	doc, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	doc.JournalEntries = append([]models.JournalEntry{entry}, doc.JournalEntries...)
	return s.store.MergeWrite(ctx, userID, map[string]interface{}{
		models.FieldJournalEntries: doc.JournalEntries,
	})
}

// begin opens a completion attempt for a logical slot and returns its
// sequence token.
func (s *InsightService) begin(slot string) uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seq[slot]++
	return s.seq[slot]
}

// stale reports whether a newer attempt was started for the slot since
// token was issued.
func (s *InsightService) stale(slot string, token uint64) bool {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.seq[slot] != token
}
