package models

import "time"

// Todo is a task on the deployment-wide shared list. It is deliberately not
// scoped to a single teacher.
type Todo struct {
	ID        string    `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	Completed bool      `db:"completed" json:"completed"`
	Assignee  string    `db:"assignee" json:"assignee"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
