package models

import "time"

// Post is a message on the deployment-wide shared feed. Like todos it is
// public across users; Likes holds the user IDs that starred it.
type Post struct {
	ID        string    `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	Author    string    `db:"author" json:"author"`
	Likes     []string  `db:"-" json:"likes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LikedBy reports whether the user already starred the post.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
