package models

// TermID identifies one of the up to three configurable terms.
type TermID string

const (
	Term1 TermID = "t1"
	Term2 TermID = "t2"
	Term3 TermID = "t3"
)

// TermSettings holds the configured start dates (YYYY-MM-DD). An empty start
// date means the term is not yet configured and is skipped during resolution.
type TermSettings struct {
	T1 string `json:"t1"`
	T2 string `json:"t2"`
	T3 string `json:"t3"`
}

// Start returns the configured start date for the given term id.
func (s TermSettings) Start(id TermID) string {
	switch id {
	case Term2:
		return s.T2
	case Term3:
		return s.T3
	default:
		return s.T1
	}
}

// TermPosition locates a calendar date inside the configured terms.
type TermPosition struct {
	Term TermID `json:"term"`
	Week int    `json:"week"`
}
