// Package store implements the persistence boundary: a single private
// document per user, merged field-by-field on write and replicated to
// subscribers as full snapshots, plus the deployment-wide shared todo
// list and post feed.
package store

import (
	"context"

	"github.com/classdesk/classdesk-api/internal/models"
)

// Store is the document persistence facade. Writes are field-granular
// last-write-wins merges; reads always observe the caller's own completed
// writes (optimistic local state), regardless of durable write completion.
type Store interface {
	// Load returns a snapshot of the user's document, seeding defaults on
	// first access. The returned document never aliases internal state.
	Load(ctx context.Context, userID string) (*models.UserDocument, error)

	// MergeWrite merges the named top-level fields into the document. The
	// local snapshot is updated synchronously; durability is best-effort
	// and failures surface through logs and metrics, never as rollbacks.
	MergeWrite(ctx context.Context, userID string, fields map[string]interface{}) error

	// Subscribe delivers a full snapshot after every change to the user's
	// document. The cancel func releases the subscription.
	Subscribe(ctx context.Context, userID string) (<-chan *models.UserDocument, func())

	// LoadImages and MergeImages address the secondary record that holds
	// the large base64 schedule images.
	LoadImages(ctx context.Context, userID string) (*models.ScheduleImages, error)
	MergeImages(ctx context.Context, userID string, images models.ScheduleImages) error

	// Shared todo collection, not scoped to a single teacher.
	ListTodos(ctx context.Context) ([]models.Todo, error)
	AddTodo(ctx context.Context, text, assignee string) (*models.Todo, error)
	ToggleTodo(ctx context.Context, id string) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error

	// Shared post feed, also public across users. ToggleLike adds the
	// user to the post's like list, or removes them if already present.
	ListPosts(ctx context.Context) ([]models.Post, error)
	AddPost(ctx context.Context, text, author string) (*models.Post, error)
	ToggleLike(ctx context.Context, id, userID string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}
