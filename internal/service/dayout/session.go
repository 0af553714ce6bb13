// Package dayout implements the five-step cart close wizard: count kept
// sticks, count kept plates, enter receipts, allocate the shortfall to
// expense categories, then verify the cash denomination count and close.
// Session state lives in memory only; nothing is persisted until the final
// close commits the whole reconciliation at once.
package dayout

import (
	"errors"
	"fmt"
	"maps"

	"github.com/kulfiwala/backend/internal/domain/money"
)

// Wizard steps, in order.
const (
	StepStick    = 1
	StepPlate    = 2
	StepReceipts = 3
	StepExpenses = 4
	StepFinalize = 5
)

var (
	// ErrInvalidInput covers malformed wizard values.
	ErrInvalidInput = errors.New("invalid day-out input")
	// ErrStepIncomplete blocks advancing past a step missing its entry.
	ErrStepIncomplete = errors.New("current step is incomplete")
	// ErrTallyMismatch blocks expense allocations beyond the shortfall and
	// final closes whose numbers do not reconcile.
	ErrTallyMismatch = errors.New("amounts do not reconcile")
	// ErrCartNotOpen means the target cart is not out selling.
	ErrCartNotOpen = errors.New("cart is not open")
	// ErrSessionNotFound means no wizard is in progress for the cart.
	ErrSessionNotFound = errors.New("no day-out session for cart")
)

// AllocatableCategories absorb the sales shortfall as value that went
// somewhere other than the cashbox. The first two persist as expenses, the
// next three as receivables. "others" participates in the tally but has no
// persisted field.
var AllocatableCategories = []string{"samples", "wastage", "credit", "swiggy", "zomato"}

// DailyCategories are direct cash outflows of the day.
var DailyCategories = []string{"municipality", "bata", "shortage", "others"}

// DenominationValues maps note names to rupee values. The "coins" entry is
// special: its count is already a rupee amount.
var DenominationValues = map[string]int{
	"500": 500, "200": 200, "100": 100, "50": 50, "20": 20, "10": 10, "coins": 1,
}

// Session is one in-flight cart close.
type Session struct {
	CartID       string
	CartOpenedAt string
	Step         int

	TakenStick int
	TakenPlate int
	StickPrice float64
	PlatePrice float64

	KeptStick int
	KeptPlate int
	stickSet  bool
	plateSet  bool

	Cash        float64
	QR          float64
	receiptsSet bool

	// OriginalBalanceShort is the shortfall frozen when the wizard moves
	// past the receipts step. Expense allocations draw it down but never
	// change it.
	OriginalBalanceShort float64

	Expenses      map[string]float64
	Denominations map[string]int
}

// NewSession starts a wizard for an open cart.
func NewSession(cartID, openedAt string, takenStick, takenPlate int, stickPrice, platePrice float64) Session {
	return Session{
		CartID:        cartID,
		CartOpenedAt:  openedAt,
		Step:          StepStick,
		TakenStick:    takenStick,
		TakenPlate:    takenPlate,
		StickPrice:    stickPrice,
		PlatePrice:    platePrice,
		Expenses:      map[string]float64{},
		Denominations: map[string]int{},
	}
}

// clone copies the session's maps so two copies never share them.
func (s Session) clone() Session {
	s.Expenses = maps.Clone(s.Expenses)
	s.Denominations = maps.Clone(s.Denominations)
	return s
}

// StickSold and PlateSold derive sales from taken minus kept.
func (s Session) StickSold() int { return s.TakenStick - s.KeptStick }
func (s Session) PlateSold() int { return s.TakenPlate - s.KeptPlate }

// SalesValue is the rupee value of everything sold at selling price.
func (s Session) SalesValue() float64 {
	return money.Round2(float64(s.StickSold())*s.StickPrice + float64(s.PlateSold())*s.PlatePrice)
}

// Collected is cash plus QR receipts.
func (s Session) Collected() float64 {
	return money.Round2(s.Cash + s.QR)
}

// BalanceShort is sales value not covered by receipts, before allocation.
func (s Session) BalanceShort() float64 {
	short := money.Round2(s.SalesValue() - s.Collected())
	if short < 0 {
		return 0
	}
	return short
}

// ExpenseTally is the sum of all allocated categories.
func (s Session) ExpenseTally() float64 {
	var total float64
	for _, v := range s.Expenses {
		total += v
	}
	return money.Round2(total)
}

// UpdatedBalanceShort is the frozen shortfall minus allocations; it must
// reach zero before the wizard can close.
func (s Session) UpdatedBalanceShort() float64 {
	return money.Round2(s.OriginalBalanceShort - s.ExpenseTally())
}

// DenomTotal sums the counted notes. Coins count as rupees directly.
func (s Session) DenomTotal() float64 {
	var total int
	for name, count := range s.Denominations {
		total += DenominationValues[name] * count
	}
	return float64(total)
}

// SetKeptStick records unsold sticks kept back, bounded by what was taken.
func (s *Session) SetKeptStick(qty int) error {
	if qty < 0 || qty > s.TakenStick {
		return fmt.Errorf("%w: kept stick %d out of range 0..%d", ErrInvalidInput, qty, s.TakenStick)
	}
	s.KeptStick = qty
	s.stickSet = true
	return nil
}

// SetKeptPlate records unsold plates kept back.
func (s *Session) SetKeptPlate(qty int) error {
	if qty < 0 || qty > s.TakenPlate {
		return fmt.Errorf("%w: kept plate %d out of range 0..%d", ErrInvalidInput, qty, s.TakenPlate)
	}
	s.KeptPlate = qty
	s.plateSet = true
	return nil
}

// SetReceipts records the money collected. Receipts can never exceed the
// sales value; there is no source for the extra money.
func (s *Session) SetReceipts(cash, qr float64) error {
	if cash < 0 || qr < 0 {
		return fmt.Errorf("%w: negative receipts", ErrInvalidInput)
	}
	if money.Round2(cash+qr) > s.SalesValue() {
		return fmt.Errorf("%w: collected %.2f exceeds sales value %.2f", ErrInvalidInput, money.Round2(cash+qr), s.SalesValue())
	}
	s.Cash = money.Round2(cash)
	s.QR = money.Round2(qr)
	s.receiptsSet = true
	return nil
}

// SetExpense allocates part of the shortfall to a category. The running
// tally can never exceed the frozen shortfall.
func (s *Session) SetExpense(category string, amount float64) error {
	if !validCategory(category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	if amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidInput)
	}

	amount = money.Round2(amount)
	newTally := money.Round2(s.ExpenseTally() - s.Expenses[category] + amount)
	if newTally > money.Round2(s.OriginalBalanceShort) {
		return fmt.Errorf("%w: tally %.2f exceeds shortfall %.2f", ErrTallyMismatch, newTally, s.OriginalBalanceShort)
	}

	if amount == 0 {
		delete(s.Expenses, category)
	} else {
		s.Expenses[category] = amount
	}
	return nil
}

// SetDenomination records a note count on the final step.
func (s *Session) SetDenomination(name string, count int) error {
	if _, ok := DenominationValues[name]; !ok {
		return fmt.Errorf("%w: unknown denomination %q", ErrInvalidInput, name)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidInput)
	}
	if count == 0 {
		delete(s.Denominations, name)
	} else {
		s.Denominations[name] = count
	}
	return nil
}

// Advance moves to the next step once the current one is complete. Moving
// past receipts freezes the shortfall; a zero shortfall clears any stale
// allocations since there is nothing to account for.
func (s *Session) Advance() error {
	switch s.Step {
	case StepStick:
		if !s.stickSet {
			return fmt.Errorf("%w: kept stick count not entered", ErrStepIncomplete)
		}
	case StepPlate:
		if !s.plateSet {
			return fmt.Errorf("%w: kept plate count not entered", ErrStepIncomplete)
		}
	case StepReceipts:
		if !s.receiptsSet {
			return fmt.Errorf("%w: receipts not entered", ErrStepIncomplete)
		}
		// Kept counts may have been revised after receipts were entered.
		if s.Collected() > s.SalesValue() {
			return fmt.Errorf("%w: collected %.2f exceeds sales value %.2f", ErrTallyMismatch, s.Collected(), s.SalesValue())
		}
		s.OriginalBalanceShort = s.BalanceShort()
		if s.OriginalBalanceShort == 0 {
			s.Expenses = map[string]float64{}
		}
	case StepExpenses:
		if s.UpdatedBalanceShort() != 0 {
			return fmt.Errorf("%w: %.2f still unallocated", ErrStepIncomplete, s.UpdatedBalanceShort())
		}
	case StepFinalize:
		return fmt.Errorf("%w: already on final step", ErrInvalidInput)
	}
	s.Step++
	return nil
}

// Back returns to the previous step without losing entries.
func (s *Session) Back() error {
	if s.Step <= StepStick {
		return fmt.Errorf("%w: already on first step", ErrInvalidInput)
	}
	s.Step--
	return nil
}

// CanClose reports whether the reconciliation is complete: final step, the
// counted cash matches the entered cash, and the shortfall fully allocated.
func (s Session) CanClose() error {
	if s.Step != StepFinalize {
		return fmt.Errorf("%w: not on final step", ErrStepIncomplete)
	}
	if money.Round2(s.DenomTotal()) != money.Round2(s.Cash) {
		return fmt.Errorf("%w: counted %.2f, cash entered %.2f", ErrTallyMismatch, s.DenomTotal(), s.Cash)
	}
	if s.UpdatedBalanceShort() != 0 {
		return fmt.Errorf("%w: %.2f unallocated shortfall", ErrTallyMismatch, s.UpdatedBalanceShort())
	}
	return nil
}

func validCategory(category string) bool {
	for _, c := range AllocatableCategories {
		if c == category {
			return true
		}
	}
	for _, c := range DailyCategories {
		if c == category {
			return true
		}
	}
	return false
}
