package dayout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/domain/models"
	"github.com/kulfiwala/backend/internal/domain/money"
	"github.com/kulfiwala/backend/internal/repository/docstore"
	"github.com/kulfiwala/backend/internal/service/carts"
	"github.com/kulfiwala/backend/internal/service/inventory"
	"github.com/kulfiwala/backend/internal/service/summary"
)

// View is the wizard state handed back after every mutation, with the
// derived figures the UI renders.
type View struct {
	CartID               string             `json:"cartId"`
	Step                 int                `json:"step"`
	TakenStick           int                `json:"takenStick"`
	TakenPlate           int                `json:"takenPlate"`
	KeptStick            int                `json:"keptStick"`
	KeptPlate            int                `json:"keptPlate"`
	StickSold            int                `json:"stickSold"`
	PlateSold            int                `json:"plateSold"`
	StickPrice           float64            `json:"stickPrice"`
	PlatePrice           float64            `json:"platePrice"`
	SalesValue           float64            `json:"salesValue"`
	Cash                 float64            `json:"cash"`
	QR                   float64            `json:"qr"`
	Collected            float64            `json:"collected"`
	OriginalBalanceShort float64            `json:"originalBalanceShort"`
	ExpenseTally         float64            `json:"expenseTally"`
	UpdatedBalanceShort  float64            `json:"updatedBalanceShort"`
	Expenses             map[string]float64 `json:"expenses"`
	Denominations        map[string]int     `json:"denominations"`
	DenomTotal           float64            `json:"denomTotal"`
	CanClose             bool               `json:"canClose"`
}

// FinalDashboard is the settlement summary retained after a cart closes.
type FinalDashboard struct {
	CartID        string             `json:"cartId"`
	Date          string             `json:"date"`
	StickSold     int                `json:"stickSold"`
	PlateSold     int                `json:"plateSold"`
	KeptStick     int                `json:"keptStick"`
	KeptPlate     int                `json:"keptPlate"`
	SalesValue    float64            `json:"salesValue"`
	Cash          float64            `json:"cash"`
	QR            float64            `json:"qr"`
	Expenses      map[string]float64 `json:"expenses"`
	Denominations map[string]int     `json:"denominations"`
	ClosedAt      string             `json:"closedAt"`
}

// Engine runs day-out wizards against the live ledgers.
type Engine struct {
	db        docstore.Store
	sessions  *SessionManager
	warehouse *inventory.Ledger
	cartFleet *carts.Ledger
	summaries *summary.Store
	log       *zap.Logger
}

// NewEngine wires the day-out engine.
func NewEngine(db docstore.Store, sessions *SessionManager, warehouse *inventory.Ledger, cartFleet *carts.Ledger, summaries *summary.Store, log *zap.Logger) *Engine {
	return &Engine{
		db:        db,
		sessions:  sessions,
		warehouse: warehouse,
		cartFleet: cartFleet,
		summaries: summaries,
		log:       log.Named("dayout"),
	}
}

// Start opens a wizard for an open cart, seeding it with the cart's load and
// the current selling prices. An existing session for the cart is resumed,
// not replaced.
func (e *Engine) Start(ctx context.Context, cartID string) (View, error) {
	if s, ok := e.sessions.Get(cartID); ok {
		return e.view(s), nil
	}

	cart, err := e.cartFleet.Get(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	if !cart.IsOpen() {
		return View{}, fmt.Errorf("%w: %s", ErrCartNotOpen, cartID)
	}

	stock, err := e.warehouse.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}

	s := NewSession(cartID, cart.OpenedAt,
		cart.Inventory.Stick, cart.Inventory.Plate,
		stock.Stick.SellingPrice, stock.Plate.SellingPrice)
	e.sessions.Put(s)

	e.log.Info("day-out session started",
		zap.String("cartId", cartID),
		zap.Int("takenStick", s.TakenStick),
		zap.Int("takenPlate", s.TakenPlate))
	return e.view(s), nil
}

// Current returns the in-flight wizard for a cart.
func (e *Engine) Current(cartID string) (View, error) {
	s, ok := e.sessions.Get(cartID)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrSessionNotFound, cartID)
	}
	return e.view(s), nil
}

// mutate runs fn against a copy of the session and stores it back on success.
func (e *Engine) mutate(cartID string, fn func(*Session) error) (View, error) {
	s, ok := e.sessions.Get(cartID)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrSessionNotFound, cartID)
	}
	if err := fn(&s); err != nil {
		return View{}, err
	}
	e.sessions.Put(s)
	return e.view(s), nil
}

// SetKept records the unsold count for the step's product.
func (e *Engine) SetKept(cartID string, product models.ProductType, qty int) (View, error) {
	return e.mutate(cartID, func(s *Session) error {
		if product == models.ProductStick {
			return s.SetKeptStick(qty)
		}
		return s.SetKeptPlate(qty)
	})
}

// SetReceipts records the money collected.
func (e *Engine) SetReceipts(cartID string, cash, qr float64) (View, error) {
	return e.mutate(cartID, func(s *Session) error {
		return s.SetReceipts(cash, qr)
	})
}

// SetExpense allocates shortfall to a category.
func (e *Engine) SetExpense(cartID, category string, amount float64) (View, error) {
	return e.mutate(cartID, func(s *Session) error {
		return s.SetExpense(category, amount)
	})
}

// SetDenomination records a counted note.
func (e *Engine) SetDenomination(cartID, name string, count int) (View, error) {
	return e.mutate(cartID, func(s *Session) error {
		return s.SetDenomination(name, count)
	})
}

// Advance moves the wizard forward one step.
func (e *Engine) Advance(cartID string) (View, error) {
	return e.mutate(cartID, func(s *Session) error { return s.Advance() })
}

// Back moves the wizard back one step.
func (e *Engine) Back(cartID string) (View, error) {
	return e.mutate(cartID, func(s *Session) error { return s.Back() })
}

// Abandon discards the wizard without touching any ledger.
func (e *Engine) Abandon(cartID string) {
	e.sessions.Delete(cartID)
	e.log.Info("day-out session abandoned", zap.String("cartId", cartID))
}

// Close commits the reconciliation: the cart is emptied and closed, kept
// stock returns to the warehouse, and the day's summary absorbs the sales,
// receipts, receivables and expenses. The summary write runs after the cart
// write set and its failure is logged rather than returned; the summary can
// be repaired from the ledgers, a half-closed cart cannot.
func (e *Engine) Close(ctx context.Context, cartID string) (FinalDashboard, error) {
	s, ok := e.sessions.Get(cartID)
	if !ok {
		return FinalDashboard{}, fmt.Errorf("%w: %s", ErrSessionNotFound, cartID)
	}
	if err := s.CanClose(); err != nil {
		return FinalDashboard{}, err
	}

	cart, err := e.cartFleet.Get(ctx, cartID)
	if err != nil {
		return FinalDashboard{}, err
	}
	if !cart.IsOpen() {
		return FinalDashboard{}, fmt.Errorf("%w: %s", ErrCartNotOpen, cartID)
	}

	stock, err := e.warehouse.Snapshot(ctx)
	if err != nil {
		return FinalDashboard{}, err
	}

	// closedAt mirrors openedAt here; the day close stamps the real
	// end-of-day timestamp across the fleet.
	writes := []docstore.Write{{
		Collection: carts.Collection,
		ID:         cartID,
		Data: map[string]any{
			"status":          models.CartStatusClosed,
			"inventory.stick": 0,
			"inventory.plate": 0,
			"closedAt":        cart.OpenedAt,
		},
	}}
	writes = append(writes, inventory.ReturnWrites(stock, s.KeptStick, s.KeptPlate)...)

	if err := docstore.ApplyLogged(ctx, e.db, "closeCart", writes); err != nil {
		return FinalDashboard{}, err
	}

	date := dateOf(cart.OpenedAt)
	delta := summary.CloseDelta{
		StickSold: s.StickSold(),
		PlateSold: s.PlateSold(),
		Receipts:  models.Receipts{Cash: s.Cash, QR: s.QR},
		Receivables: models.Receivables{
			Credit: s.Expenses["credit"],
			Swiggy: s.Expenses["swiggy"],
			Zomato: s.Expenses["zomato"],
		},
		Expenses: models.Expenses{
			Samples:      s.Expenses["samples"],
			Wastage:      s.Expenses["wastage"],
			Municipality: s.Expenses["municipality"],
			Bata:         s.Expenses["bata"],
			Shortage:     s.Expenses["shortage"],
		},
	}
	if err := e.summaries.ApplyCartClose(ctx, date, delta); err != nil {
		e.log.Error("cart closed but summary update failed",
			zap.String("cartId", cartID),
			zap.String("date", date),
			zap.Error(err))
	}

	dashboard := FinalDashboard{
		CartID:        cartID,
		Date:          date,
		StickSold:     s.StickSold(),
		PlateSold:     s.PlateSold(),
		KeptStick:     s.KeptStick,
		KeptPlate:     s.KeptPlate,
		SalesValue:    s.SalesValue(),
		Cash:          s.Cash,
		QR:            s.QR,
		Expenses:      s.Expenses,
		Denominations: s.Denominations,
		ClosedAt:      cart.OpenedAt,
	}
	e.sessions.Complete(cartID, dashboard)

	e.log.Info("cart closed",
		zap.String("cartId", cartID),
		zap.String("date", date),
		zap.Int("stickSold", s.StickSold()),
		zap.Int("plateSold", s.PlateSold()),
		zap.Float64("collected", s.Collected()))
	return dashboard, nil
}

// Dashboard returns the retained settlement of a cart's last close.
func (e *Engine) Dashboard(cartID string) (FinalDashboard, error) {
	d, ok := e.sessions.Dashboard(cartID)
	if !ok {
		return FinalDashboard{}, fmt.Errorf("%w: %s", ErrSessionNotFound, cartID)
	}
	return d, nil
}

func (e *Engine) view(s Session) View {
	expenses := make(map[string]float64, len(s.Expenses))
	for k, v := range s.Expenses {
		expenses[k] = v
	}
	denoms := make(map[string]int, len(s.Denominations))
	for k, v := range s.Denominations {
		denoms[k] = v
	}
	return View{
		CartID:               s.CartID,
		Step:                 s.Step,
		TakenStick:           s.TakenStick,
		TakenPlate:           s.TakenPlate,
		KeptStick:            s.KeptStick,
		KeptPlate:            s.KeptPlate,
		StickSold:            s.StickSold(),
		PlateSold:            s.PlateSold(),
		StickPrice:           s.StickPrice,
		PlatePrice:           s.PlatePrice,
		SalesValue:           s.SalesValue(),
		Cash:                 s.Cash,
		QR:                   s.QR,
		Collected:            s.Collected(),
		OriginalBalanceShort: s.OriginalBalanceShort,
		ExpenseTally:         s.ExpenseTally(),
		UpdatedBalanceShort:  money.Round2(s.UpdatedBalanceShort()),
		Expenses:             expenses,
		Denominations:        denoms,
		DenomTotal:           s.DenomTotal(),
		CanClose:             s.CanClose() == nil,
	}
}

// dateOf extracts the "YYYY-MM-DD" date from an RFC3339 timestamp, falling
// back to today when the cart never got an openedAt.
func dateOf(ts string) string {
	if len(ts) >= 10 && strings.Count(ts[:10], "-") == 2 {
		return ts[:10]
	}
	return time.Now().UTC().Format("2006-01-02")
}
