// Package lifecycle drives the trading-day state machine: startDay stamps
// the opening warehouse snapshot, closeDay seals the ledger for the date.
// The effective business date is derived from the ledger itself, not the
// wall clock, so a day left open yesterday stays the active date until it
// is properly closed.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/repository/docstore"
	"github.com/kulfiwala/backend/internal/service/carts"
	"github.com/kulfiwala/backend/internal/service/inventory"
	"github.com/kulfiwala/backend/internal/service/summary"
)

var (
	// ErrPriorDayUnclosed blocks starting a new day over an unclosed one.
	ErrPriorDayUnclosed = errors.New("a prior day is still unclosed")
	// ErrDayAlreadyStarted means startDay was called twice for the date.
	ErrDayAlreadyStarted = errors.New("day already started")
	// ErrDayNotStarted means closeDay was called before startDay.
	ErrDayNotStarted = errors.New("day not started")
	// ErrDayAlreadyClosed means the date's ledger is already sealed.
	ErrDayAlreadyClosed = errors.New("day already closed")
	// ErrCartsStillOpen blocks closeDay while carts are out selling.
	ErrCartsStillOpen = errors.New("carts are still open")
)

const dateLayout = "2006-01-02"

// Controller coordinates the day lifecycle across the three ledgers.
type Controller struct {
	db        docstore.Store
	summaries *summary.Store
	carts     *carts.Ledger
	warehouse *inventory.Ledger
	loc       *time.Location
	log       *zap.Logger
	now       func() time.Time
}

// NewController wires the lifecycle controller. loc is the business
// timezone; dates roll over at its midnight. Tests override now directly.
func NewController(db docstore.Store, summaries *summary.Store, cartLedger *carts.Ledger, warehouse *inventory.Ledger, loc *time.Location, log *zap.Logger) *Controller {
	return &Controller{
		db:        db,
		summaries: summaries,
		carts:     cartLedger,
		warehouse: warehouse,
		loc:       loc,
		log:       log.Named("lifecycle"),
		now:       time.Now,
	}
}

// Today returns the current business date.
func (c *Controller) Today() string {
	return c.now().In(c.loc).Format(dateLayout)
}

// EffectiveDate is the date day-out operations act on. It scans the current
// year's months backward from the present month; the first month containing
// a started-but-unclosed day wins, and within it the earliest such date.
// With no unclosed day anywhere, the effective date is today.
func (c *Controller) EffectiveDate(ctx context.Context) (string, error) {
	today := c.now().In(c.loc)
	year := today.Format("2006")

	for m := int(today.Month()); m >= 1; m-- {
		month := fmt.Sprintf("%02d", m)
		record, err := c.summaries.Month(ctx, year, month)
		if err != nil {
			return "", err
		}

		var unclosed []string
		for date, day := range record.DailySummaries {
			if day.DayStarted && !day.DayClosed {
				unclosed = append(unclosed, date)
			}
		}
		if len(unclosed) > 0 {
			sort.Strings(unclosed)
			return unclosed[0], nil
		}
	}
	return today.Format(dateLayout), nil
}

// State describes where the effective date sits in the day lifecycle.
type State struct {
	Date       string `json:"date"`
	DayStarted bool   `json:"dayStarted"`
	DayClosed  bool   `json:"dayClosed"`
}

// State reports the effective date and its start/close flags.
func (c *Controller) State(ctx context.Context) (State, error) {
	date, err := c.EffectiveDate(ctx)
	if err != nil {
		return State{}, err
	}
	day, ok, err := c.summaries.Summary(ctx, date)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{Date: date}, nil
	}
	return State{Date: date, DayStarted: day.DayStarted, DayClosed: day.DayClosed}, nil
}

// StartDay opens today's ledger entry with the warehouse opening snapshot.
// It refuses while any earlier day is still unclosed.
func (c *Controller) StartDay(ctx context.Context) (models.DailySummary, error) {
	today := c.Today()

	effective, err := c.EffectiveDate(ctx)
	if err != nil {
		return models.DailySummary{}, err
	}
	if effective != today {
		return models.DailySummary{}, fmt.Errorf("%w: %s", ErrPriorDayUnclosed, effective)
	}

	if day, ok, err := c.summaries.Summary(ctx, today); err != nil {
		return models.DailySummary{}, err
	} else if ok && day.DayStarted {
		return models.DailySummary{}, fmt.Errorf("%w: %s", ErrDayAlreadyStarted, today)
	}

	opening, err := c.warehouse.Snapshot(ctx)
	if err != nil {
		return models.DailySummary{}, err
	}
	if err := c.summaries.CreateDay(ctx, today, opening); err != nil {
		return models.DailySummary{}, err
	}

	c.log.Info("day started", zap.String("date", today))
	return models.DailySummary{Date: today, OpeningStock: opening, DayStarted: true}, nil
}

// CloseDay seals the effective date with the closing warehouse snapshot and
// stamps every cart's closedAt to the end of that date. All carts must have
// been closed through the day-out flow first.
func (c *Controller) CloseDay(ctx context.Context) (models.DailySummary, error) {
	date, err := c.EffectiveDate(ctx)
	if err != nil {
		return models.DailySummary{}, err
	}

	day, ok, err := c.summaries.Summary(ctx, date)
	if err != nil {
		return models.DailySummary{}, err
	}
	if !ok || !day.DayStarted {
		return models.DailySummary{}, fmt.Errorf("%w: %s", ErrDayNotStarted, date)
	}
	if day.DayClosed {
		return models.DailySummary{}, fmt.Errorf("%w: %s", ErrDayAlreadyClosed, date)
	}

	open, err := c.carts.OpenCarts(ctx)
	if err != nil {
		return models.DailySummary{}, err
	}
	if len(open) > 0 {
		return models.DailySummary{}, fmt.Errorf("%w: %d open", ErrCartsStillOpen, len(open))
	}

	closing, err := c.warehouse.Snapshot(ctx)
	if err != nil {
		return models.DailySummary{}, err
	}

	closeWrite, err := summary.CloseDayWrite(date, closing, "Day closed successfully")
	if err != nil {
		return models.DailySummary{}, err
	}
	writes := []docstore.Write{closeWrite}

	// Every cart gets the same end-of-day timestamp so per-cart openedAt
	// gaps do not leak into the next day's reconciliation.
	endOfDay := date + "T23:59:00Z"
	fleet, err := c.carts.List(ctx)
	if err != nil {
		return models.DailySummary{}, err
	}
	for _, cart := range fleet {
		writes = append(writes, docstore.Write{
			Collection: carts.Collection,
			ID:         cart.ID,
			Data:       map[string]any{"closedAt": endOfDay},
		})
	}

	if err := docstore.ApplyLogged(ctx, c.db, "closeDay", writes); err != nil {
		return models.DailySummary{}, err
	}

	c.log.Info("day closed", zap.String("date", date))
	day.ClosingStock = &closing
	day.DayClosed = true
	day.Remarks = "Day closed successfully"
	return day, nil
}
