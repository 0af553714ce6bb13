package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/service/inventory"
	"github.com/kulfiwala/backend/internal/service/lifecycle"
)

// InventoryHandler serves the warehouse endpoints.
type InventoryHandler struct {
	svc       *inventory.Ledger
	lifecycle *lifecycle.Controller
	logger    *zap.Logger
}

// NewInventoryHandler constructs the warehouse HTTP adapter.
func NewInventoryHandler(svc *inventory.Ledger, lc *lifecycle.Controller, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, lifecycle: lc, logger: logger}
}

// Snapshot returns both warehouse records.
func (h *InventoryHandler) Snapshot(c *gin.Context) {
	stock, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// Get returns one product's warehouse record.
func (h *InventoryHandler) Get(c *gin.Context) {
	product, err := models.ParseProductType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.svc.Get(c.Request.Context(), product)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type replenishRequest struct {
	Quantity     int      `json:"quantity" binding:"required"`
	CostPrice    *float64 `json:"costPrice"`
	SellingPrice *float64 `json:"sellingPrice"`
}

// Replenish records an incoming stock delivery. The movement is mirrored
// into the effective trading day's received counters when a day is open.
func (h *InventoryHandler) Replenish(c *gin.Context) {
	product, err := models.ParseProductType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req replenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	date, err := h.lifecycle.EffectiveDate(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	record, err := h.svc.Replenish(c.Request.Context(), product, date, inventory.ReplenishParams{
		Quantity:     req.Quantity,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type transferRequest struct {
	Stick int `json:"stick"`
	Plate int `json:"plate"`
}

// Transfer moves warehouse stock onto a cart and opens it.
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transfer payload"})
		return
	}

	if err := h.svc.TransferToCart(c.Request.Context(), c.Param("id"), req.Stick, req.Plate); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
