package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// CreatePostRequest adds a message to the shared feed.
type CreatePostRequest struct {
	Text   string `json:"text" validate:"required"`
	Author string `json:"author" validate:"omitempty"`
}

// PostService manages the deployment-wide shared post feed. Like the todo
// list it is public: every signed-in user reads the same feed and can star
// any post.
type PostService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPostService creates a post service instance.
func NewPostService(st store.Store, validate *validator.Validate, logger *zap.Logger) *PostService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{store: st, validator: validate, logger: logger}
}

// List returns the feed, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.store.ListPosts(ctx)
}

// Create appends a post. The author defaults to the acting user.
func (s *PostService) Create(ctx context.Context, userID string, req CreatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "post text is required")
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = userID
	}
	return s.store.AddPost(ctx, text, author)
}

// ToggleLike stars the post for the user, or unstars it if already starred.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.store.ToggleLike(ctx, postID, userID)
}

// Delete removes a post from the feed.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	return s.store.DeletePost(ctx, postID)
}
