package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/store"
)

// StreamHandler pushes document snapshots to clients over server-sent
// events, mirroring the live-update subscription of the store.
type StreamHandler struct {
	store  store.Store
	userID string
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(st store.Store, userID string) *StreamHandler {
	return &StreamHandler{store: st, userID: userID}
}

// Document godoc
// @Summary Stream document snapshots as server-sent events
// @Tags Stream
// @Produce text/event-stream
// @Success 200
// @Router /stream/document [get]
func (h *StreamHandler) Document(c *gin.Context) {
	userID := userIDFromContext(c, h.userID)
	snapshots, cancel := h.store.Subscribe(c.Request.Context(), userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				return false
			}
			payload, err := json.Marshal(snapshot)
			if err != nil {
				return false
			}
			c.SSEvent("document", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
