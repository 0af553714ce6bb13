// Package handlers adapts the ledger services onto gin routes.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/repository/docstore"
	"github.com/kulfiwala/backend/internal/service/carts"
	"github.com/kulfiwala/backend/internal/service/dayout"
	"github.com/kulfiwala/backend/internal/service/inventory"
	"github.com/kulfiwala/backend/internal/service/lifecycle"
	"github.com/kulfiwala/backend/internal/service/reminders"
)

// respondError maps service errors onto HTTP statuses: validation to 400,
// missing things to 404, business-rule refusals to 409, everything else to
// 502 since the document store is the usual culprit.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, carts.ErrInvalidInput),
		errors.Is(err, reminders.ErrInvalidInput),
		errors.Is(err, dayout.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, dayout.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, carts.ErrCartOpen),
		errors.Is(err, dayout.ErrCartNotOpen),
		errors.Is(err, dayout.ErrStepIncomplete),
		errors.Is(err, dayout.ErrTallyMismatch),
		errors.Is(err, lifecycle.ErrPriorDayUnclosed),
		errors.Is(err, lifecycle.ErrDayAlreadyStarted),
		errors.Is(err, lifecycle.ErrDayNotStarted),
		errors.Is(err, lifecycle.ErrDayAlreadyClosed),
		errors.Is(err, lifecycle.ErrCartsStillOpen):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "document store operation failed"})
	}
}
