package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharmalink/backend/internal/application/event"
)

// OutboxHandler is the operator surface over the event outbox
type OutboxHandler struct {
	BaseHandler
	outbox *event.OutboxService
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(outbox *event.OutboxService, logger *zap.Logger) *OutboxHandler {
	return &OutboxHandler{
		BaseHandler: NewBaseHandler(logger),
		outbox:      outbox,
	}
}

// ListDeadLetters handles GET /outbox/dead-letters
func (h *OutboxHandler) ListDeadLetters(c *gin.Context) {
	var filter event.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.outbox.GetDeadLetterEntries(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// GetEntry handles GET /outbox/entries/:id
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.outbox.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryEntry handles POST /outbox/entries/:id/retry
func (h *OutboxHandler) RetryEntry(c *gin.Context) {
	id, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.outbox.RetryDeadEntry(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAll handles POST /outbox/retry-all
func (h *OutboxHandler) RetryAll(c *gin.Context) {
	requeued, err := h.outbox.RetryAllDeadEntries(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"requeued": requeued})
}

// Stats handles GET /outbox/stats
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.outbox.GetStats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, stats)
}
