// Package summary owns the dailyStockSummary collection: one document per
// month, keyed "<YYYY>/months/<MM>", holding a dailySummaries map keyed by
// "YYYY-MM-DD". All mutations go through dotted-path merge updates so two
// writers never clobber each other's dates.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/domain/money"
	"github.com/kulfiwala/backend/internal/repository/docstore"
)

// Collection is the month-document collection name.
const Collection = "dailyStockSummary"

// Store reads and mutates month documents.
type Store struct {
	db  docstore.Store
	log *zap.Logger
}

// NewStore wires the summary store to a document backend.
func NewStore(db docstore.Store, log *zap.Logger) *Store {
	return &Store{db: db, log: log.Named("summary")}
}

// MonthID builds the month document id from "YYYY" and "MM" parts.
func MonthID(year, month string) string {
	return year + "/months/" + month
}

// SplitDate breaks a "YYYY-MM-DD" date into its year and month parts.
func SplitDate(date string) (year, month string, err error) {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", "", fmt.Errorf("malformed date %q", date)
	}
	return parts[0], parts[1], nil
}

func dayPath(date string) string {
	return "dailySummaries." + date
}

// Month fetches a month record; a missing document yields an empty record.
func (s *Store) Month(ctx context.Context, year, month string) (models.MonthRecord, error) {
	doc, err := s.db.Get(ctx, Collection, MonthID(year, month))
	if errors.Is(err, docstore.ErrNotFound) {
		return models.MonthRecord{DailySummaries: map[string]models.DailySummary{}}, nil
	}
	if err != nil {
		return models.MonthRecord{}, err
	}

	var record models.MonthRecord
	if err := docstore.Decode(doc, &record); err != nil {
		return models.MonthRecord{}, err
	}
	if record.DailySummaries == nil {
		record.DailySummaries = map[string]models.DailySummary{}
	}
	return record, nil
}

// Summary fetches a single day's entry. The second return reports presence.
func (s *Store) Summary(ctx context.Context, date string) (models.DailySummary, bool, error) {
	year, month, err := SplitDate(date)
	if err != nil {
		return models.DailySummary{}, false, err
	}
	record, err := s.Month(ctx, year, month)
	if err != nil {
		return models.DailySummary{}, false, err
	}
	day, ok := record.DailySummaries[date]
	return day, ok, nil
}

// CreateDay writes a fresh day entry with the warehouse opening snapshot.
// The month document is upserted if this is the first trading day of the
// month.
func (s *Store) CreateDay(ctx context.Context, date string, opening models.StockPair) error {
	year, month, err := SplitDate(date)
	if err != nil {
		return err
	}

	day := models.DailySummary{
		Date:         date,
		OpeningStock: opening,
		DayStarted:   true,
	}
	data, err := docstore.Encode(day)
	if err != nil {
		return err
	}

	s.log.Info("starting day", zap.String("date", date))
	return s.db.Update(ctx, Collection, MonthID(year, month), map[string]any{
		dayPath(date): data,
	})
}

// CloseDayWrite returns the merge update that seals a day with the closing
// warehouse snapshot. The lifecycle controller folds it into a larger write
// set alongside the cart timestamp stamps.
func CloseDayWrite(date string, closing models.StockPair, remarks string) (docstore.Write, error) {
	year, month, err := SplitDate(date)
	if err != nil {
		return docstore.Write{}, err
	}
	closingData, err := docstore.Encode(closing)
	if err != nil {
		return docstore.Write{}, err
	}
	return docstore.Write{
		Collection: Collection,
		ID:         MonthID(year, month),
		Data: map[string]any{
			dayPath(date) + ".closingStock": closingData,
			dayPath(date) + ".dayClosed":    true,
			dayPath(date) + ".remarks":      remarks,
		},
	}, nil
}

// AddReceived folds a replenishment transfer into the day's received
// counters. Days that were never started are skipped; the warehouse ledger
// is the source of truth and the summary only mirrors movement on trading
// days.
func (s *Store) AddReceived(ctx context.Context, date string, product models.ProductType, qty int) error {
	day, ok, err := s.Summary(ctx, date)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("no summary for replenishment date, skipping", zap.String("date", date))
		return nil
	}

	year, month, _ := SplitDate(date)
	field := "receivedStick"
	current := day.ReceivedStick
	if product == models.ProductPlate {
		field = "receivedPlate"
		current = day.ReceivedPlate
	}
	return s.db.Update(ctx, Collection, MonthID(year, month), map[string]any{
		dayPath(date) + "." + field: current + qty,
	})
}

// CloseDelta is the movement a single cart close contributes to its day.
type CloseDelta struct {
	StickSold   int
	PlateSold   int
	Receipts    models.Receipts
	Receivables models.Receivables
	Expenses    models.Expenses
}

// ApplyCartClose accumulates a cart close into the day entry with one merge
// update. Counters are read-modify-write on the current values; the dotted
// paths keep the rest of the day untouched.
func (s *Store) ApplyCartClose(ctx context.Context, date string, delta CloseDelta) error {
	day, _, err := s.Summary(ctx, date)
	if err != nil {
		return err
	}
	year, month, err := SplitDate(date)
	if err != nil {
		return err
	}

	p := dayPath(date)
	data := map[string]any{
		p + ".stickSold":             day.StickSold + delta.StickSold,
		p + ".plateSold":             day.PlateSold + delta.PlateSold,
		p + ".receipts.cash":         money.Round2(day.Receipts.Cash + delta.Receipts.Cash),
		p + ".receipts.qr":           money.Round2(day.Receipts.QR + delta.Receipts.QR),
		p + ".receivables.credit":    money.Round2(day.Receivables.Credit + delta.Receivables.Credit),
		p + ".receivables.swiggy":    money.Round2(day.Receivables.Swiggy + delta.Receivables.Swiggy),
		p + ".receivables.zomato":    money.Round2(day.Receivables.Zomato + delta.Receivables.Zomato),
		p + ".expenses.samples":      money.Round2(day.Expenses.Samples + delta.Expenses.Samples),
		p + ".expenses.wastage":      money.Round2(day.Expenses.Wastage + delta.Expenses.Wastage),
		p + ".expenses.other":        money.Round2(day.Expenses.Other + delta.Expenses.Other),
		p + ".expenses.municipality": money.Round2(day.Expenses.Municipality + delta.Expenses.Municipality),
		p + ".expenses.bata":         money.Round2(day.Expenses.Bata + delta.Expenses.Bata),
		p + ".expenses.shortage":     money.Round2(day.Expenses.Shortage + delta.Expenses.Shortage),
	}

	s.log.Info("applying cart close to summary",
		zap.String("date", date),
		zap.Int("stickSold", delta.StickSold),
		zap.Int("plateSold", delta.PlateSold))
	return s.db.Update(ctx, Collection, MonthID(year, month), data)
}

// Years lists the distinct years that have month documents, newest first.
func (s *Store) Years(ctx context.Context) ([]string, error) {
	docs, err := s.db.ReadAll(ctx, Collection)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var years []string
	for _, doc := range docs {
		year, _, ok := strings.Cut(doc.ID(), "/")
		if !ok || len(year) != 4 || seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years, nil
}
