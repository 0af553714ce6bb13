package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/server/handlers"
)

// Handlers groups the route handlers the router wires.
type Handlers struct {
	Carts      *handlers.CartsHandler
	Inventory  *handlers.InventoryHandler
	Operations *handlers.OperationsHandler
	DayOut     *handlers.DayOutHandler
	Reports    *handlers.ReportsHandler
	Reminders  *handlers.RemindersHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/carts", h.Carts.List)
	api.POST("/carts", h.Carts.Create)
	api.GET("/carts/:id", h.Carts.Get)
	api.PUT("/carts/:id", h.Carts.Update)
	api.DELETE("/carts/:id", h.Carts.Delete)

	api.GET("/inventory", h.Inventory.Snapshot)
	api.GET("/inventory/:type", h.Inventory.Get)
	api.POST("/inventory/:type/replenish", h.Inventory.Replenish)
	api.POST("/carts/:id/transfer", h.Inventory.Transfer)

	api.GET("/operations/state", h.Operations.State)
	api.POST("/operations/start-day", h.Operations.StartDay)
	api.POST("/operations/close-day", h.Operations.CloseDay)

	api.POST("/carts/:id/dayout", h.DayOut.Start)
	api.GET("/carts/:id/dayout", h.DayOut.Current)
	api.DELETE("/carts/:id/dayout", h.DayOut.Abandon)
	api.POST("/carts/:id/dayout/kept", h.DayOut.SetKept)
	api.POST("/carts/:id/dayout/receipts", h.DayOut.SetReceipts)
	api.POST("/carts/:id/dayout/expense", h.DayOut.SetExpense)
	api.POST("/carts/:id/dayout/denomination", h.DayOut.SetDenomination)
	api.POST("/carts/:id/dayout/advance", h.DayOut.Advance)
	api.POST("/carts/:id/dayout/back", h.DayOut.Back)
	api.POST("/carts/:id/dayout/close", h.DayOut.Close)
	api.GET("/carts/:id/dayout/dashboard", h.DayOut.Dashboard)

	api.GET("/reports/years", h.Reports.Years)
	api.GET("/reports/:year/:month", h.Reports.Monthly)

	api.GET("/reminders", h.Reminders.List)
	api.POST("/reminders", h.Reminders.Create)
	api.PUT("/reminders/:id", h.Reminders.Update)
	api.POST("/reminders/:id/paid", h.Reminders.MarkPaid)
	api.DELETE("/reminders/:id", h.Reminders.Delete)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
