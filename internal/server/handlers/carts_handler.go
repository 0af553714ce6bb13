package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/service/carts"
)

// CartsHandler serves the cart fleet endpoints.
type CartsHandler struct {
	svc    *carts.Ledger
	logger *zap.Logger
}

// NewCartsHandler constructs the cart HTTP adapter.
func NewCartsHandler(svc *carts.Ledger, logger *zap.Logger) *CartsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartsHandler{svc: svc, logger: logger}
}

type cartRequest struct {
	Address string `json:"address" binding:"required"`
}

// List returns the reconciled fleet.
func (h *CartsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"carts": list})
}

// Get returns one cart.
func (h *CartsHandler) Get(c *gin.Context) {
	cart, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// Create adds a cart at a pitch address.
func (h *CartsHandler) Create(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	cart, err := h.svc.Create(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

// Update renames a cart's address.
func (h *CartsHandler) Update(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	if err := h.svc.UpdateAddress(c.Request.Context(), c.Param("id"), req.Address); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a closed, empty cart.
func (h *CartsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
