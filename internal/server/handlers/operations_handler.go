package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/service/lifecycle"
)

// OperationsHandler serves the day lifecycle endpoints.
type OperationsHandler struct {
	svc    *lifecycle.Controller
	logger *zap.Logger
}

// NewOperationsHandler constructs the lifecycle HTTP adapter.
func NewOperationsHandler(svc *lifecycle.Controller, logger *zap.Logger) *OperationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OperationsHandler{svc: svc, logger: logger}
}

// State reports the effective date and its lifecycle flags.
func (h *OperationsHandler) State(c *gin.Context) {
	state, err := h.svc.State(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// StartDay opens today's ledger with the warehouse opening snapshot.
func (h *OperationsHandler) StartDay(c *gin.Context) {
	day, err := h.svc.StartDay(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, day)
}

// CloseDay seals the effective date.
func (h *OperationsHandler) CloseDay(c *gin.Context) {
	day, err := h.svc.CloseDay(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, day)
}
