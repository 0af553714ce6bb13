package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/service/reporting"
)

// ReportsHandler serves the monthly report endpoints.
type ReportsHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportsHandler constructs the reports HTTP adapter.
func NewReportsHandler(svc *reporting.Service, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, logger: logger}
}

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
)

// Years lists the years with ledger data.
func (h *ReportsHandler) Years(c *gin.Context) {
	years, err := h.svc.Years(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// Monthly renders one month's report.
func (h *ReportsHandler) Monthly(c *gin.Context) {
	year, month := c.Param("year"), c.Param("month")
	if !yearPattern.MatchString(year) || !monthPattern.MatchString(month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be YYYY and month must be MM"})
		return
	}

	report, err := h.svc.Monthly(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
