package models

// LessonPlan is a per-class, per-term, per-week topic record. Sparse: a
// missing entry reads as an all-empty plan.
type LessonPlan struct {
	Week      int    `json:"week"`
	Topic     string `json:"topic"`
	Materials string `json:"materials"`
	DateLabel string `json:"dateLabel"`
}

// Curriculum maps classID -> termID -> week number -> plan.
type Curriculum map[string]map[string]map[int]LessonPlan

// Plan returns the stored plan or an empty one carrying the week number.
func (c Curriculum) Plan(classID string, term TermID, week int) LessonPlan {
	if byTerm, ok := c[classID]; ok {
		if byWeek, ok := byTerm[string(term)]; ok {
			if plan, ok := byWeek[week]; ok {
				return plan
			}
		}
	}
	return LessonPlan{Week: week}
}

// SetPlan stores a plan, allocating intermediate maps as needed.
func (c Curriculum) SetPlan(classID string, term TermID, plan LessonPlan) {
	byTerm, ok := c[classID]
	if !ok {
		byTerm = make(map[string]map[int]LessonPlan)
		c[classID] = byTerm
	}
	byWeek, ok := byTerm[string(term)]
	if !ok {
		byWeek = make(map[int]LessonPlan)
		byTerm[string(term)] = byWeek
	}
	byWeek[plan.Week] = plan
}
