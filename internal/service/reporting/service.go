// Package reporting renders the monthly business report from the daily
// summary ledger. Calendar days without a ledger entry appear as holiday
// rows so the month reads as a complete calendar, except that a run of
// holidays before the first trading day is trimmed.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/cache"
	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/domain/money"
	"github.com/kulfiwala/backend/internal/service/summary"
)

// Row is one calendar day in the monthly report.
type Row struct {
	Date          string             `json:"date"`
	Holiday       bool               `json:"holiday"`
	StickSold     int                `json:"stickSold"`
	PlateSold     int                `json:"plateSold"`
	ReceivedStick int                `json:"receivedStick"`
	ReceivedPlate int                `json:"receivedPlate"`
	Receipts      models.Receipts    `json:"receipts"`
	Receivables   models.Receivables `json:"receivables"`
	Expenses      models.Expenses    `json:"expenses"`
	DayClosed     bool               `json:"dayClosed"`
	Remarks       string             `json:"remarks,omitempty"`
}

// Totals aggregates the month.
type Totals struct {
	StickSold     int     `json:"stickSold"`
	PlateSold     int     `json:"plateSold"`
	ReceivedStick int     `json:"receivedStick"`
	ReceivedPlate int     `json:"receivedPlate"`
	Cash          float64 `json:"cash"`
	QR            float64 `json:"qr"`
	Receivables   float64 `json:"receivables"`
	Expenses      float64 `json:"expenses"`
	TradingDays   int     `json:"tradingDays"`
	Holidays      int     `json:"holidays"`
}

// MonthlyReport is the rendered month.
type MonthlyReport struct {
	Year         string            `json:"year"`
	Month        string            `json:"month"`
	Rows         []Row             `json:"rows"`
	Totals       Totals            `json:"totals"`
	OpeningStock *models.StockPair `json:"openingStock,omitempty"`
	ClosingStock *models.StockPair `json:"closingStock,omitempty"`
}

// Service renders reports, with a read-through cache in front of the
// summary ledger.
type Service struct {
	summaries *summary.Store
	cache     cache.ReportCache
	loc       *time.Location
	log       *zap.Logger
	now       func() time.Time
}

// NewService wires the reporting service. Tests override now directly.
func NewService(summaries *summary.Store, reportCache cache.ReportCache, loc *time.Location, log *zap.Logger) *Service {
	return &Service{
		summaries: summaries,
		cache:     reportCache,
		loc:       loc,
		log:       log.Named("reporting"),
		now:       time.Now,
	}
}

func cacheKey(year, month string) string {
	return "report:" + year + ":" + month
}

// Monthly renders the report for one month, serving from cache when
// possible. Future days are never rendered; the current month ends at today.
func (s *Service) Monthly(ctx context.Context, year, month string) (MonthlyReport, error) {
	key := cacheKey(year, month)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var report MonthlyReport
		if err := json.Unmarshal([]byte(raw), &report); err == nil {
			return report, nil
		}
		s.log.Warn("discarding undecodable cached report", zap.String("key", key))
	}

	record, err := s.summaries.Month(ctx, year, month)
	if err != nil {
		return MonthlyReport{}, err
	}

	report, err := render(year, month, record, s.now().In(s.loc))
	if err != nil {
		return MonthlyReport{}, err
	}

	if raw, err := json.Marshal(report); err == nil {
		s.cache.Set(ctx, key, string(raw))
	}
	return report, nil
}

// render builds the report rows from a month record. Pure, so the calendar
// rules are testable with a fixed clock.
func render(year, month string, record models.MonthRecord, now time.Time) (MonthlyReport, error) {
	first, err := time.ParseInLocation("2006-01-02", year+"-"+month+"-01", now.Location())
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("bad report month %s-%s: %w", year, month, err)
	}

	last := first.AddDate(0, 1, -1)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if last.After(today) {
		last = today
	}

	report := MonthlyReport{Year: year, Month: month}
	seenTrading := false
	var lastTradingClose *models.StockPair

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		day, ok := record.DailySummaries[date]
		if !ok || !day.DayStarted {
			if !seenTrading {
				continue
			}
			report.Rows = append(report.Rows, Row{Date: date, Holiday: true})
			report.Totals.Holidays++
			continue
		}

		if !seenTrading {
			seenTrading = true
			opening := day.OpeningStock
			report.OpeningStock = &opening
		}
		if day.ClosingStock != nil {
			lastTradingClose = day.ClosingStock
		}

		report.Rows = append(report.Rows, Row{
			Date:          date,
			StickSold:     day.StickSold,
			PlateSold:     day.PlateSold,
			ReceivedStick: day.ReceivedStick,
			ReceivedPlate: day.ReceivedPlate,
			Receipts:      day.Receipts,
			Receivables:   day.Receivables,
			Expenses:      day.Expenses,
			DayClosed:     day.DayClosed,
			Remarks:       day.Remarks,
		})
		report.Totals.TradingDays++
		report.Totals.StickSold += day.StickSold
		report.Totals.PlateSold += day.PlateSold
		report.Totals.ReceivedStick += day.ReceivedStick
		report.Totals.ReceivedPlate += day.ReceivedPlate
		report.Totals.Cash = money.Round2(report.Totals.Cash + day.Receipts.Cash)
		report.Totals.QR = money.Round2(report.Totals.QR + day.Receipts.QR)
		report.Totals.Receivables = money.Round2(report.Totals.Receivables +
			day.Receivables.Credit + day.Receivables.Swiggy + day.Receivables.Zomato)
		report.Totals.Expenses = money.Round2(report.Totals.Expenses +
			day.Expenses.Samples + day.Expenses.Wastage + day.Expenses.Other +
			day.Expenses.Municipality + day.Expenses.Bata + day.Expenses.Shortage)
	}

	report.ClosingStock = lastTradingClose
	return report, nil
}

// Years lists the years with any ledger data, newest first.
func (s *Service) Years(ctx context.Context) ([]string, error) {
	return s.summaries.Years(ctx)
}

// Invalidate drops the cached report for a month. The scheduler calls this
// for the current month after the nightly rollover.
func (s *Service) Invalidate(ctx context.Context, year, month string) {
	s.cache.Delete(ctx, cacheKey(year, month))
}
