package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/genai"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// aiStub serves canned completions in the generateContent wire shape.
func aiStub(t *testing.T, reply string) *genai.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": reply}}}},
			},
		})
		require.NoError(t, err)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return genai.NewClient(genai.Config{APIKey: "test", Model: "m", BaseURL: server.URL}, nil)
}

// recordingAIStub is aiStub plus capture of every submitted prompt.
func recordingAIStub(t *testing.T, reply string) (*genai.Client, *[]string) {
	t.Helper()
	prompts := &[]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			*prompts = append(*prompts, req.Contents[0].Parts[0].Text)
		}
		payload, err := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": reply}}}},
			},
		})
		require.NoError(t, err)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return genai.NewClient(genai.Config{APIKey: "test", Model: "m", BaseURL: server.URL}, nil), prompts
}

func newInsightFixture(t *testing.T, ai *genai.Client) (*InsightService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(nil)
	xp := NewXPService(st, nil)
	attendance := NewAttendanceService(st, xp, nil)
	return NewInsightService(st, ai, attendance, xp, nil, nil), st
}

func TestJournalAddAndDelete(t *testing.T) {
	svc, _ := newInsightFixture(t, nil)
	ctx := context.Background()

	before, err := svc.Journal(ctx, "teacher")
	require.NoError(t, err)

	entry, err := svc.AddJournalEntry(ctx, "teacher", CreateJournalRequest{
		Title:   "Parent meeting notes",
		Content: "Discussed progress with the Satos.",
	})
	require.NoError(t, err)
	require.Equal(t, "General", entry.Category)

	after, err := svc.Journal(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	// New entries go to the front.
	require.Equal(t, entry.ID, after[0].ID)

	require.NoError(t, svc.DeleteJournalEntry(ctx, "teacher", entry.ID))
	err = svc.DeleteJournalEntry(ctx, "teacher", entry.ID)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResearchParsesStructuredReply(t *testing.T) {
	ai := aiStub(t, "```json\n{\"title\":\"Retrieval practice\",\"category\":\"Pedagogy\",\"content\":\"Use low-stakes quizzes.\"}\n```")
	svc, _ := newInsightFixture(t, ai)

	entry, err := svc.Research(context.Background(), "teacher", ResearchRequest{Topic: "retrieval practice"})
	require.NoError(t, err)
	require.Equal(t, "Retrieval practice", entry.Title)
	require.Equal(t, "Pedagogy", entry.Category)
	require.Equal(t, "Use low-stakes quizzes.", entry.Content)

	journal, err := svc.Journal(context.Background(), "teacher")
	require.NoError(t, err)
	require.Equal(t, entry.ID, journal[0].ID)
}

func TestResearchDegradesToRawText(t *testing.T) {
	ai := aiStub(t, "Just plain prose, no JSON here.")
	svc, _ := newInsightFixture(t, ai)

	entry, err := svc.Research(context.Background(), "teacher", ResearchRequest{Topic: "group work"})
	require.NoError(t, err)
	require.Equal(t, "Insight: group work", entry.Title)
	require.Equal(t, "AI Research", entry.Category)
	require.Equal(t, "Just plain prose, no JSON here.", entry.Content)
}

func TestResearchDisabledAssistant(t *testing.T) {
	disabled := genai.NewClient(genai.Config{}, nil)
	svc, _ := newInsightFixture(t, disabled)

	_, err := svc.Research(context.Background(), "teacher", ResearchRequest{Topic: "anything"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrGenAIUnavailable.Code, appErrors.FromError(err).Code)
}

func TestStaleTokenDiscardsSupersededCompletion(t *testing.T) {
	svc, _ := newInsightFixture(t, nil)

	first := svc.begin("research:teacher")
	second := svc.begin("research:teacher")

	require.True(t, svc.stale("research:teacher", first))
	require.False(t, svc.stale("research:teacher", second))
}

func TestReportUsesRosterAndAttendance(t *testing.T) {
	ai := aiStub(t, "Alex is doing well. Keep reading together at home.")
	svc, _ := newInsightFixture(t, ai)

	report, err := svc.Report(context.Background(), "teacher", "c1", 1, ReportRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(1), report.StudentID)
	require.NotEmpty(t, report.Name)
	require.Contains(t, report.Report, "Alex is doing well")

	_, err = svc.Report(context.Background(), "teacher", "c1", 999, ReportRequest{})
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportPromptCarriesTraitsNotesAndTone(t *testing.T) {
	ai, prompts := recordingAIStub(t, "A fine term overall.")
	svc, _ := newInsightFixture(t, ai)

	_, err := svc.Report(context.Background(), "teacher", "c1", 1, ReportRequest{
		Traits: []string{"Participates Actively", "Creative Thinker"},
		Notes:  "Improved a lot since the midterm.",
		Tone:   "warm",
	})
	require.NoError(t, err)

	require.Len(t, *prompts, 1)
	prompt := (*prompts)[0]
	require.Contains(t, prompt, "Participates Actively, Creative Thinker")
	require.Contains(t, prompt, "Improved a lot since the midterm.")
	require.Contains(t, prompt, "Tone: warm")

	// An empty shaping payload leaves those sections out entirely.
	_, err = svc.Report(context.Background(), "teacher", "c1", 1, ReportRequest{})
	require.NoError(t, err)
	require.Len(t, *prompts, 2)
	require.NotContains(t, (*prompts)[1], "Selected traits")
	require.NotContains(t, (*prompts)[1], "Tone:")
}

func TestAdminCommandRenameClass(t *testing.T) {
	ai := aiStub(t, `{"action":"RENAME_CLASS","classId":"c1","name":"J1 - World History"}`)
	svc, st := newInsightFixture(t, ai)
	ctx := context.Background()

	result, err := svc.AdminCommand(ctx, "teacher", AdminCommandRequest{Command: "rename my first class to World History"})
	require.NoError(t, err)
	require.Equal(t, actionRenameClass, result.Action)

	doc, err := st.Load(ctx, "teacher")
	require.NoError(t, err)
	require.Equal(t, "J1 - World History", doc.Classes[0].Name)
}

func TestAdminCommandCreateClass(t *testing.T) {
	ai := aiStub(t, `{"action":"CREATE_CLASS","name":"J2 - Ethics"}`)
	svc, st := newInsightFixture(t, ai)
	ctx := context.Background()

	result, err := svc.AdminCommand(ctx, "teacher", AdminCommandRequest{Command: "add a new ethics class"})
	require.NoError(t, err)
	require.Equal(t, actionCreateClass, result.Action)

	doc, err := st.Load(ctx, "teacher")
	require.NoError(t, err)
	require.Len(t, doc.Classes, 2)
	require.Equal(t, "J2 - Ethics", doc.Classes[1].Name)
	require.Equal(t, models.LayoutGrid, doc.Classes[1].Layout)
}

func TestAdminCommandChangeLayout(t *testing.T) {
	ai := aiStub(t, `{"action":"CHANGE_LAYOUT","classId":"c1","layout":"groups"}`)
	svc, st := newInsightFixture(t, ai)
	ctx := context.Background()

	_, err := svc.AdminCommand(ctx, "teacher", AdminCommandRequest{Command: "switch to group seating"})
	require.NoError(t, err)

	doc, err := st.Load(ctx, "teacher")
	require.NoError(t, err)
	require.Equal(t, models.LayoutGroups, doc.Classes[0].Layout)
}

func TestAdminCommandAdviceFallback(t *testing.T) {
	ai := aiStub(t, "You could try alternating seat pairs weekly.")
	svc, _ := newInsightFixture(t, ai)

	result, err := svc.AdminCommand(context.Background(), "teacher", AdminCommandRequest{Command: "how do I handle chatty students"})
	require.NoError(t, err)
	require.Equal(t, actionAdvice, result.Action)
	require.Contains(t, result.Message, "alternating seat pairs")
}

func TestAdminCommandUnknownClass(t *testing.T) {
	ai := aiStub(t, `{"action":"RENAME_CLASS","classId":"c999","name":"Nope"}`)
	svc, st := newInsightFixture(t, ai)
	ctx := context.Background()

	result, err := svc.AdminCommand(ctx, "teacher", AdminCommandRequest{Command: "rename the missing class"})
	require.NoError(t, err)
	require.Equal(t, actionAdvice, result.Action)

	doc, err := st.Load(ctx, "teacher")
	require.NoError(t, err)
	require.Equal(t, "J1 - Japanese History", doc.Classes[0].Name)
}

func TestQuickNotesRoundTrip(t *testing.T) {
	svc, _ := newInsightFixture(t, nil)
	ctx := context.Background()

	notes, err := svc.QuickNotes(ctx, "teacher")
	require.NoError(t, err)
	require.Empty(t, notes)

	require.NoError(t, svc.SaveQuickNotes(ctx, "teacher", "bring the projector cable"))

	notes, err = svc.QuickNotes(ctx, "teacher")
	require.NoError(t, err)
	require.Equal(t, "bring the projector cable", notes)
}
