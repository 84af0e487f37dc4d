package models

// ScoreEntry is one parsed line of pasted assessment data.
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ScoreAnalysis aggregates a parsed score batch.
type ScoreAnalysis struct {
	Entries        []ScoreEntry `json:"entries"`
	Average        float64      `json:"average"`
	Struggling     []ScoreEntry `json:"struggling"`
	Recommendation string       `json:"recommendation"`
}
