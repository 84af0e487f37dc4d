package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// MemoryStore keeps every document in process memory. It backs offline/demo
// mode and the test suites; semantics match the postgres store except that
// writes are durable-free by definition.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]*models.UserDocument
	images map[string]*models.ScheduleImages
	todos  []models.Todo
	posts  []models.Post
	subs   map[string]map[int]chan *models.UserDocument
	nextID int
	logger *zap.Logger
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		docs:   make(map[string]*models.UserDocument),
		images: make(map[string]*models.ScheduleImages),
		subs:   make(map[string]map[int]chan *models.UserDocument),
		logger: logger,
	}
}

// Load returns a snapshot, seeding demo content on first access.
func (s *MemoryStore) Load(_ context.Context, userID string) (*models.UserDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[userID]
	if !ok {
		doc = SeedDocument()
		s.docs[userID] = doc
		s.logger.Info("seeded new user document", zap.String("user_id", userID))
	}
	return doc.Clone(), nil
}

// MergeWrite applies the named fields and fans the snapshot out.
func (s *MemoryStore) MergeWrite(ctx context.Context, userID string, fields map[string]interface{}) error {
	s.mu.Lock()
	doc, ok := s.docs[userID]
	if !ok {
		doc = SeedDocument()
		s.docs[userID] = doc
	}
	for name, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			s.mu.Unlock()
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unencodable field value")
		}
		if err := doc.ApplyField(name, raw); err != nil {
			s.mu.Unlock()
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed field value")
		}
	}
	snapshot := doc.Clone()
	// Sends stay under the lock so a concurrent cancel cannot close a
	// channel between collection and delivery. They never block: each
	// send is non-blocking against the subscriber's buffer.
	for _, ch := range s.subs[userID] {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber: drop this snapshot, a fresher one follows.
		}
	}
	s.mu.Unlock()
	return nil
}

// Subscribe registers a snapshot channel for the user.
func (s *MemoryStore) Subscribe(_ context.Context, userID string) (<-chan *models.UserDocument, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan *models.UserDocument, 8)
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]chan *models.UserDocument)
	}
	s.subs[userID][id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[userID][id]; ok {
			delete(s.subs[userID], id)
			close(sub)
		}
	}
	return ch, cancel
}

// LoadImages returns the secondary image record.
func (s *MemoryStore) LoadImages(_ context.Context, userID string) (*models.ScheduleImages, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if img, ok := s.images[userID]; ok {
		copied := *img
		return &copied, nil
	}
	return &models.ScheduleImages{}, nil
}

// MergeImages replaces the image record wholesale; callers read, modify
// and write back, so both slots always arrive populated with the intended
// final values.
func (s *MemoryStore) MergeImages(_ context.Context, userID string, images models.ScheduleImages) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.images[userID]
	if !ok {
		current = &models.ScheduleImages{}
		s.images[userID] = current
	}
	current.Weekly = images.Weekly
	current.Yearly = images.Yearly
	return nil
}

// ListTodos returns shared todos newest first.
func (s *MemoryStore) ListTodos(_ context.Context) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	todos := make([]models.Todo, len(s.todos))
	copy(todos, s.todos)
	sort.SliceStable(todos, func(i, j int) bool { return todos[i].CreatedAt.After(todos[j].CreatedAt) })
	return todos, nil
}

// AddTodo appends a shared todo.
func (s *MemoryStore) AddTodo(_ context.Context, text, assignee string) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo := models.Todo{
		ID:        uuid.NewString(),
		Text:      text,
		Assignee:  assignee,
		CreatedAt: time.Now().UTC(),
	}
	s.todos = append(s.todos, todo)
	return &todo, nil
}

// ToggleTodo flips completion.
func (s *MemoryStore) ToggleTodo(_ context.Context, id string) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos[i].Completed = !s.todos[i].Completed
			todo := s.todos[i]
			return &todo, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "todo not found")
}

// DeleteTodo removes the todo with the given id.
func (s *MemoryStore) DeleteTodo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "todo not found")
}

// ListPosts returns the shared feed newest first.
func (s *MemoryStore) ListPosts(_ context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]models.Post, len(s.posts))
	for i, post := range s.posts {
		posts[i] = post
		posts[i].Likes = append([]string(nil), post.Likes...)
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

// AddPost appends a post to the shared feed.
func (s *MemoryStore) AddPost(_ context.Context, text, author string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := models.Post{
		ID:        uuid.NewString(),
		Text:      text,
		Author:    author,
		Likes:     []string{},
		CreatedAt: time.Now().UTC(),
	}
	s.posts = append(s.posts, post)
	copied := post
	copied.Likes = append([]string(nil), post.Likes...)
	return &copied, nil
}

// ToggleLike adds or removes the user from the post's like list.
func (s *MemoryStore) ToggleLike(_ context.Context, id, userID string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID != id {
			continue
		}
		likes := s.posts[i].Likes
		removed := false
		for j, liker := range likes {
			if liker == userID {
				s.posts[i].Likes = append(likes[:j], likes[j+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			s.posts[i].Likes = append(likes, userID)
		}
		copied := s.posts[i]
		copied.Likes = append([]string(nil), s.posts[i].Likes...)
		return &copied, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
}

// DeletePost removes the post with the given id.
func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "post not found")
}
