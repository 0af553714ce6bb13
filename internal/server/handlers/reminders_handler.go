package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/service/reminders"
)

// RemindersHandler serves the bill reminder endpoints.
type RemindersHandler struct {
	svc    *reminders.Service
	logger *zap.Logger
}

// NewRemindersHandler constructs the reminders HTTP adapter.
func NewRemindersHandler(svc *reminders.Service, logger *zap.Logger) *RemindersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemindersHandler{svc: svc, logger: logger}
}

// List returns all reminders, rollovers applied.
func (h *RemindersHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": list})
}

// Create adds a reminder.
func (h *RemindersHandler) Create(c *gin.Context) {
	var req models.Reminder
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder payload"})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update edits a reminder.
func (h *RemindersHandler) Update(c *gin.Context) {
	var req models.Reminder
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder payload"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkPaid records the bill as paid for this cycle.
func (h *RemindersHandler) MarkPaid(c *gin.Context) {
	if err := h.svc.MarkPaid(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a reminder.
func (h *RemindersHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
