package models

// SeatingLayout enumerates the supported classroom arrangements.
type SeatingLayout string

const (
	LayoutUShape SeatingLayout = "u-shape"
	LayoutRows   SeatingLayout = "rows"
	LayoutGroups SeatingLayout = "groups"
	LayoutGrid   SeatingLayout = "grid"
)

// Student belongs to exactly one class section. Performance is a mutable
// teacher-edited percentage; writes overwrite, no history is kept.
type Student struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Performance int    `json:"performance"`
}

// ClassSection groups students sharing a schedule slot and seating layout.
type ClassSection struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Layout   SeatingLayout `json:"layout"`
	Students []Student     `json:"students"`
}

// FindStudent returns the roster entry with the given id, or nil.
func (c *ClassSection) FindStudent(id int64) *Student {
	for i := range c.Students {
		if c.Students[i].ID == id {
			return &c.Students[i]
		}
	}
	return nil
}
