package store

import (
	"time"

	"github.com/classdesk/classdesk-api/internal/models"
)

// SeedDocument returns the demo content written on first-ever access for a
// user. Offline mode serves this data exclusively.
func SeedDocument() *models.UserDocument {
	doc := models.NewUserDocument()
	doc.Classes = []models.ClassSection{
		{
			ID:     "c1",
			Name:   "J1 - Japanese History",
			Layout: models.LayoutUShape,
			Students: []models.Student{
				{ID: 1, Name: "Alex Johnson", Performance: 85},
				{ID: 2, Name: "Sam Smith", Performance: 60},
				{ID: 3, Name: "Taylor Doe", Performance: 92},
				{ID: 4, Name: "Jordan Lee", Performance: 45},
				{ID: 5, Name: "Casey Brown", Performance: 78},
				{ID: 6, Name: "Jamie Wilson", Performance: 88},
				{ID: 7, Name: "Morgan Davis", Performance: 70},
				{ID: 8, Name: "Riley Miller", Performance: 55},
				{ID: 9, Name: "Quinn Taylor", Performance: 95},
				{ID: 10, Name: "Avery Moore", Performance: 82},
			},
		},
	}
	doc.Schedule = models.WeekSchedule{
		"Monday": {
			{Period: "1st Period", Code: "J1", Time: "08:50 - 09:40", Type: models.EntryLesson, Name: "Japanese History", ClassID: "c1"},
			{Period: "2nd Period", Code: "M2", Time: "09:50 - 10:40", Type: models.EntryLesson, Name: "Math B", ClassID: "c1"},
		},
		"Tuesday": {}, "Wednesday": {}, "Thursday": {}, "Friday": {},
	}
	doc.JournalEntries = []models.JournalEntry{
		{
			ID:       "j1",
			Title:    "CLIL in History: 3 Practical Strategies",
			Category: "CLIL",
			Date:     time.Now().UTC(),
			Content:  "1. Visual Timelines: Use simplified language on timelines.\n2. Key Vocabulary Lists: Pre-teach 'Revolution', 'Trade', 'Empire'.\n3. Sentence Starters: Provide scaffolds like 'The main cause was...'.",
		},
		{
			ID:       "j2",
			Title:    "AI for Formative Assessment",
			Category: "AI",
			Date:     time.Now().UTC().Add(-24 * time.Hour),
			Content:  "Using AI to generate quick exit tickets based on today's lesson topic allows for immediate feedback loops.",
		},
	}
	return doc
}
