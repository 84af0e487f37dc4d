package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/store"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

// ImageSlot names one of the two schedule image attachments.
type ImageSlot string

const (
	SlotWeekly ImageSlot = "weekly"
	SlotYearly ImageSlot = "yearly"
)

// SaveImageRequest carries a base64 data-URL payload for one slot.
type SaveImageRequest struct {
	Data string `json:"data" validate:"required"`
}

// ImageService stores the weekly and yearly schedule images. Payloads are
// base64 data URLs kept in a secondary record so the primary document
// stays small.
type ImageService struct {
	store    store.Store
	maxBytes int
	logger   *zap.Logger
}

// NewImageService creates an image service instance. maxBytes caps the
// encoded payload size, not the decoded image size.
func NewImageService(st store.Store, maxBytes int, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{store: st, maxBytes: maxBytes, logger: logger}
}

// Images returns both slots; never-written slots come back empty.
func (s *ImageService) Images(ctx context.Context, userID string) (*models.ScheduleImages, error) {
	return s.store.LoadImages(ctx, userID)
}

// Save writes one slot, leaving the other untouched. Oversized payloads
// are rejected before any write happens.
func (s *ImageService) Save(ctx context.Context, userID string, slot ImageSlot, req SaveImageRequest) error {
	data := strings.TrimSpace(req.Data)
	if data == "" {
		return appErrors.Clone(appErrors.ErrValidation, "image payload is empty")
	}
	if len(data) > s.maxBytes {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, "encoded image exceeds the storage limit; use a smaller or more compressed image")
	}
	current, err := s.store.LoadImages(ctx, userID)
	if err != nil {
		return err
	}
	switch slot {
	case SlotWeekly:
		current.Weekly = data
	case SlotYearly:
		current.Yearly = data
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown image slot")
	}
	return s.store.MergeImages(ctx, userID, *current)
}

// Delete clears one slot.
func (s *ImageService) Delete(ctx context.Context, userID string, slot ImageSlot) error {
	current, err := s.store.LoadImages(ctx, userID)
	if err != nil {
		return err
	}
	switch slot {
	case SlotWeekly:
		current.Weekly = ""
	case SlotYearly:
		current.Yearly = ""
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown image slot")
	}
	return s.store.MergeImages(ctx, userID, *current)
}
