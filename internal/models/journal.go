package models

import "time"

// JournalEntry is a pedagogy note, either hand-written or AI-generated.
type JournalEntry struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Content  string    `json:"content"`
}
