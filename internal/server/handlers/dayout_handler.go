package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/service/dayout"
)

// DayOutHandler serves the cart-close wizard endpoints.
type DayOutHandler struct {
	svc    *dayout.Engine
	logger *zap.Logger
}

// NewDayOutHandler constructs the wizard HTTP adapter.
func NewDayOutHandler(svc *dayout.Engine, logger *zap.Logger) *DayOutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DayOutHandler{svc: svc, logger: logger}
}

// Start opens (or resumes) the wizard for an open cart.
func (h *DayOutHandler) Start(c *gin.Context) {
	view, err := h.svc.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Current returns the in-flight wizard state.
func (h *DayOutHandler) Current(c *gin.Context) {
	view, err := h.svc.Current(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type keptRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required"`
}

// SetKept records an unsold count.
func (h *DayOutHandler) SetKept(c *gin.Context) {
	var req keptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product and quantity are required"})
		return
	}
	product, err := models.ParseProductType(req.Product)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.svc.SetKept(c.Param("id"), product, *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type receiptsRequest struct {
	Cash *float64 `json:"cash" binding:"required"`
	QR   *float64 `json:"qr" binding:"required"`
}

// SetReceipts records the money collected.
func (h *DayOutHandler) SetReceipts(c *gin.Context) {
	var req receiptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cash and qr are required"})
		return
	}

	view, err := h.svc.SetReceipts(c.Param("id"), *req.Cash, *req.QR)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type expenseRequest struct {
	Category string   `json:"category" binding:"required"`
	Amount   *float64 `json:"amount" binding:"required"`
}

// SetExpense allocates shortfall to a category.
func (h *DayOutHandler) SetExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category and amount are required"})
		return
	}

	view, err := h.svc.SetExpense(c.Param("id"), req.Category, *req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type denominationRequest struct {
	Denomination string `json:"denomination" binding:"required"`
	Count        *int   `json:"count" binding:"required"`
}

// SetDenomination records a counted note.
func (h *DayOutHandler) SetDenomination(c *gin.Context) {
	var req denominationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "denomination and count are required"})
		return
	}

	view, err := h.svc.SetDenomination(c.Param("id"), req.Denomination, *req.Count)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Advance moves the wizard forward one step.
func (h *DayOutHandler) Advance(c *gin.Context) {
	view, err := h.svc.Advance(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Back moves the wizard back one step.
func (h *DayOutHandler) Back(c *gin.Context) {
	view, err := h.svc.Back(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Close commits the reconciliation and closes the cart.
func (h *DayOutHandler) Close(c *gin.Context) {
	dashboard, err := h.svc.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Abandon discards the wizard without closing the cart.
func (h *DayOutHandler) Abandon(c *gin.Context) {
	h.svc.Abandon(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Dashboard returns the retained settlement of the cart's last close.
func (h *DayOutHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
